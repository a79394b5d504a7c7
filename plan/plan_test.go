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
	"fmt"
	"strings"
	"testing"

	"github.com/Comcast/rove/core"
	"github.com/Comcast/rove/interpreters/goja"
)

var pointsPlan = `
name: points
doc: |
  Enumerates grid points.
root: points
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2]
  ys:
    kind: variable
    type: int
    domain: [10, 20]
  points:
    kind: derived
    type: Point
    args:
      x: xs
      y: ys
`

func pointFactory(args map[string]interface{}) (interface{}, error) {
	x, have := args["x"]
	if !have {
		return nil, fmt.Errorf("no x")
	}
	y, have := args["y"]
	if !have {
		return nil, fmt.Errorf("no y")
	}
	return fmt.Sprintf("(%v,%v)", x, y), nil
}

func TestCompilePoints(t *testing.T) {
	p, err := Parse([]byte(pointsPlan))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, map[string]core.Factory{
		"Point": pointFactory,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rs, err := core.Collect(c.Root.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 4 {
		t.Fatalf("got %d results", len(rs))
	}

	want := []string{"(1,10)", "(1,20)", "(2,10)", "(2,20)"}
	for i, r := range rs {
		got := r.Bs[c.Root.Id()]
		if got != want[i] {
			t.Fatalf("result %d: got %v; wanted %s", i, got, want[i])
		}
	}
}

func TestCompileNamedNodes(t *testing.T) {
	p, err := Parse([]byte(pointsPlan))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, map[string]core.Factory{
		"Point": pointFactory,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"xs", "ys", "points"} {
		if _, have := c.Nodes[name]; !have {
			t.Fatalf("no compiled node '%s'", name)
		}
	}
	if c.Root != c.Nodes["points"] {
		t.Fatal("root isn't 'points'")
	}
}

func TestCompileRawArg(t *testing.T) {
	// "y" is a raw value here, not a node reference.
	src := `
root: points
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2]
  points:
    kind: derived
    type: Point
    args:
      x: xs
      y: 42
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, map[string]core.Factory{
		"Point": pointFactory,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rs, err := core.Collect(c.Root.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatalf("got %d results", len(rs))
	}
	for _, r := range rs {
		s := r.Bs[c.Root.Id()].(string)
		if !strings.HasSuffix(s, ",42)") {
			t.Fatalf("bad point %s", s)
		}
	}
}

func TestCompileFilter(t *testing.T) {
	src := `
root: big
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2, 3, 4]
  big:
    kind: filter
    of: xs
    guard: |
      return _.bindings["int"] > 2;
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, nil, map[string]GuardInterpreter{
		"goja": goja.NewInterpreter(),
	})
	if err != nil {
		t.Fatal(err)
	}

	rs, err := core.Collect(c.Root.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 4 {
		t.Fatalf("got %d results", len(rs))
	}

	valid := 0
	for _, r := range rs {
		if r.Valid {
			valid++
		}
	}
	if valid != 2 {
		t.Fatalf("got %d valid results", valid)
	}
}

func TestCompileProductAndExternal(t *testing.T) {
	src := `
root: both
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2]
  pose:
    kind: external
  both:
    kind: product
    of: [xs, pose]
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The external slot has no feed, so the product is empty.
	rs, err := core.Collect(c.Root.Evaluate(ctx, core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 0 {
		t.Fatalf("got %d results", len(rs))
	}

	if _, have := c.Nodes["pose"]; !have {
		t.Fatal("no compiled node 'pose'")
	}
}

func TestCompileCycle(t *testing.T) {
	src := `
root: a
nodes:
  a:
    kind: product
    of: [b]
  b:
    kind: product
    of: [a]
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	if _, err = p.Compile(context.Background(), nil, nil); err == nil {
		t.Fatal("compiled a cyclic plan")
	}
}

func TestCompileUndefined(t *testing.T) {
	src := `
root: a
nodes:
  a:
    kind: product
    of: [nope]
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	if _, err = p.Compile(context.Background(), nil, nil); err == nil {
		t.Fatal("compiled a plan with an undefined node")
	}
}

func TestCompileSharedChild(t *testing.T) {
	// Two parents reference the same child; it's compiled once.
	src := `
root: pairs
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2]
  pairs:
    kind: product
    of: [xs, xs]
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	c, err := p.Compile(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Root.Children()) != 2 {
		t.Fatalf("got %d children", len(c.Root.Children()))
	}
	if c.Root.Children()[0] != c.Root.Children()[1] {
		t.Fatal("shared child was compiled twice")
	}
}
