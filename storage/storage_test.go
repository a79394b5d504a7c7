/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Comcast/rove/core"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestStorageBasic(t *testing.T) {
	ctx := context.Background()
	s := testStorage(t)

	if err := s.Add(ctx, "colors", "r", "red"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "colors", "b", "blue"); err != nil {
		t.Fatal(err)
	}

	x, have, err := s.Get(ctx, "colors", "r")
	if err != nil {
		t.Fatal(err)
	}
	if !have || x != "red" {
		t.Fatalf("got %#v (%v)", x, have)
	}

	if err = s.Rem(ctx, "colors", "r"); err != nil {
		t.Fatal(err)
	}
	if _, have, _ = s.Get(ctx, "colors", "r"); have {
		t.Fatal("still have r")
	}

	if _, have, _ = s.Get(ctx, "nope", "r"); have {
		t.Fatal("found something in an unknown domain")
	}
}

func TestStorageDomains(t *testing.T) {
	ctx := context.Background()
	s := testStorage(t)

	if err := s.Add(ctx, "colors", "r", "red"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "sizes", "s", "small"); err != nil {
		t.Fatal(err)
	}

	names, err := s.Domains(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("got %#v", names)
	}

	if err = s.RemDomain(ctx, "sizes"); err != nil {
		t.Fatal(err)
	}
	if names, err = s.Domains(ctx); err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "colors" {
		t.Fatalf("got %#v", names)
	}
}

func TestStorageDomainSource(t *testing.T) {
	ctx := context.Background()
	s := testStorage(t)

	// Keys chosen so key order differs from insertion order.
	if err := s.Add(ctx, "colors", "2", "green"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "colors", "1", "red"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(ctx, "colors", "3", "blue"); err != nil {
		t.Fatal(err)
	}

	v := core.NewVariable("color", s.Domain("colors"))

	rs, err := core.Collect(v.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}

	want := []interface{}{"red", "green", "blue"}
	if len(rs) != len(want) {
		t.Fatalf("got %d results", len(rs))
	}
	for i, r := range rs {
		if got := r.Bs[v.Id()]; got != want[i] {
			t.Fatalf("result %d: got %#v; wanted %#v", i, got, want[i])
		}
	}
}

func TestStorageDomainSnapshot(t *testing.T) {
	ctx := context.Background()
	s := testStorage(t)

	if err := s.Add(ctx, "colors", "1", "red"); err != nil {
		t.Fatal(err)
	}

	src := s.Domain("colors")

	// First pull takes the snapshot.
	x, ok, err := src()
	if err != nil || !ok || x != "red" {
		t.Fatalf("got %#v (%v, %v)", x, ok, err)
	}

	// A write after the snapshot isn't visible.
	if err = s.Add(ctx, "colors", "2", "green"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ = src(); ok {
		t.Fatal("saw a write that landed mid-enumeration")
	}
}

func TestStorageDomainEmpty(t *testing.T) {
	s := testStorage(t)

	src := s.Domain("nope")
	if _, ok, err := src(); ok || err != nil {
		t.Fatalf("got %v, %v", ok, err)
	}
}
