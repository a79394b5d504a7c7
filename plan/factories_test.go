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

package plan

import (
	"context"
	"testing"

	"github.com/Comcast/rove/core"
)

func TestBaseFactorySum(t *testing.T) {
	src := `
root: totals
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2]
  ys:
    kind: variable
    type: int
    domain: [10, 20]
  totals:
    kind: derived
    type: total
    factory: sum
    args:
      x: xs
      y: ys
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, BaseFactories(), nil)
	if err != nil {
		t.Fatal(err)
	}

	rs, err := core.Collect(c.Root.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{11, 21, 12, 22}
	if len(rs) != len(want) {
		t.Fatalf("got %d results", len(rs))
	}
	for i, r := range rs {
		if got := r.Bs[c.Root.Id()]; got != want[i] {
			t.Fatalf("result %d: got %#v; wanted %v", i, got, want[i])
		}
	}
}

func TestBaseFactoryRecord(t *testing.T) {
	src := `
root: rows
nodes:
  xs:
    kind: variable
    type: int
    domain: [1]
  rows:
    kind: derived
    type: row
    factory: record
    args:
      x: xs
      tag: "fixed"
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, BaseFactories(), nil)
	if err != nil {
		t.Fatal(err)
	}

	rs, err := core.Collect(c.Root.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 {
		t.Fatalf("got %d results", len(rs))
	}

	row, is := rs[0].Bs[c.Root.Id()].(map[string]interface{})
	if !is {
		t.Fatalf("got %#v", rs[0].Bs[c.Root.Id()])
	}
	if row["x"] != 1 || row["tag"] != "fixed" {
		t.Fatalf("got %#v", row)
	}
}

func TestSumFactoryBadArg(t *testing.T) {
	if _, err := sumFactory(map[string]interface{}{"x": "tacos"}); err == nil {
		t.Fatal("summed tacos")
	}
}
