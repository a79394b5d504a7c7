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

package tools

import (
	"os"
	"testing"

	"github.com/Comcast/rove/plan"
)

var testPlanYAML = `
name: points
doc: |
  Enumerates grid points near the origin.
root: near
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
    doc: A point on the grid.
    args:
      x: xs
      y: ys
  near:
    kind: filter
    of: points
    guard: |
      return _.bindings["Point"].x < 2;
`

func testPlan(t *testing.T) *plan.Plan {
	t.Helper()
	p, err := plan.Parse([]byte(testPlanYAML))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDot(t *testing.T) {
	filename := "g.dot"

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	if err := Dot(testPlan(t), out, ""); err != nil {
		t.Fatal(err)
	}
}

func TestEdges(t *testing.T) {
	p := testPlan(t)

	edges := Edges(p, "points")
	if len(edges) != 2 {
		t.Fatalf("got %#v", edges)
	}
	// Sorted by arg name.
	if edges[0].To != "xs" || edges[0].Label != "x" {
		t.Fatalf("got %#v", edges[0])
	}

	edges = Edges(p, "near")
	if len(edges) != 1 || edges[0].To != "points" {
		t.Fatalf("got %#v", edges)
	}

	if edges = Edges(p, "xs"); 0 < len(edges) {
		t.Fatalf("got %#v", edges)
	}
}
