package main

import (
	"strings"
	"testing"

	"github.com/Comcast/rove/plan"
)

func TestAddFilter(t *testing.T) {
	p, err := plan.Parse([]byte(`
root: xs
nodes:
  xs:
    kind: variable
    type: int
    domain: [1, 2, 3]
`))
	if err != nil {
		t.Fatal(err)
	}

	if err = AddFilter(p, "guarded", `return _.bindings["xs"] < 3;`, "goja"); err != nil {
		t.Fatal(err)
	}

	if p.Root != "guarded" {
		t.Fatalf(`root is "%s"`, p.Root)
	}

	d, have := p.Nodes["guarded"]
	if !have {
		t.Fatal("no new node")
	}
	if d.Kind != "filter" {
		t.Fatalf(`kind is "%s"`, d.Kind)
	}
	if d.Of != "xs" {
		t.Fatalf("of is %#v", d.Of)
	}
	if !strings.Contains(p.Doc, "AddFilter") {
		t.Fatal("doc wasn't updated")
	}

	if err = AddFilter(p, "guarded", "return true;", "goja"); err != NodeExists {
		t.Fatalf("wanted NodeExists; got %v", err)
	}
}

func TestAddFilterNoRoot(t *testing.T) {
	p := &plan.Plan{}
	if err := AddFilter(p, "guarded", "return true;", "goja"); err != NoRootNode {
		t.Fatalf("wanted NoRootNode; got %v", err)
	}
}
