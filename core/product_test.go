package core

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func TestProductOrder(t *testing.T) {
	a := NewVariable("a", []interface{}{"a1", "a2"})
	b := NewVariable("b", []interface{}{"b1", "b2"})
	p := NewProduct(a, b)

	rs, err := Collect(p.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}

	want := [][2]interface{}{
		{"a1", "b1"},
		{"a1", "b2"},
		{"a2", "b1"},
		{"a2", "b2"},
	}
	if len(rs) != len(want) {
		t.Fatalf("got %d combinations", len(rs))
	}
	for i, r := range rs {
		got := [2]interface{}{r.Bs[a.Id()], r.Bs[b.Id()]}
		if got != want[i] {
			t.Fatalf("at %d: got %v, wanted %v", i, got, want[i])
		}
		if !r.Valid {
			t.Fatalf("at %d: invalid", i)
		}
	}
}

func TestProductRepeatable(t *testing.T) {
	a := NewVariable("a", []interface{}{1, 2})
	b := NewVariable("b", []interface{}{10, 20, 30})
	p := NewProduct(a, b)

	shape := func() []string {
		rs, err := Collect(p.Evaluate(context.Background(), NewBindings()))
		if err != nil {
			t.Fatal(err)
		}
		acc := make([]string, len(rs))
		for i, r := range rs {
			acc[i] = fmt.Sprintf("%v/%v", r.Bs[a.Id()], r.Bs[b.Id()])
		}
		return acc
	}

	first := shape()
	second := shape()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
	if len(first) != 6 {
		t.Fatalf("got %d combinations", len(first))
	}
}

// siblingSum is a node whose domain depends on an earlier sibling's
// bound value.
type siblingSum struct {
	id    Id
	other Node
}

func (n *siblingSum) Id() Id                          { return n.id }
func (n *siblingSum) Name() string                    { return "sum" }
func (n *siblingSum) Origin() Origin                  { return OriginDeduced }
func (n *siblingSum) Children() []Node                { return nil }
func (n *siblingSum) ReplaceChild(old, new Node) error { return &NoChildren{n} }

func (n *siblingSum) Evaluate(ctx context.Context, bs Bindings) Results {
	done := false
	return ResultsFunc(func() (*Result, error) {
		if done {
			return nil, nil
		}
		done = true
		x, _ := bs[n.other.Id()].(int)
		return &Result{Bs: bs.Extend(n.id, x+100), Valid: true}, nil
	})
}

func TestProductCorrelated(t *testing.T) {
	// A later child sees the bindings of earlier children.
	a := NewVariable("a", []interface{}{1, 2})
	s := &siblingSum{id: nextId(), other: a}
	p := NewProduct(a, s)

	// The product's results carry the union of the path's
	// bindings; project out the correlated child's value.
	rs, err := Collect(p.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	sums := make([]interface{}, len(rs))
	for i, r := range rs {
		sums[i] = r.Bs[s.Id()]
	}
	if !reflect.DeepEqual(sums, []interface{}{101, 102}) {
		t.Fatalf("got %#v", sums)
	}
}

func TestProductProvenance(t *testing.T) {
	a := NewVariable("a", []interface{}{"x"})
	b := NewVariable("b", []interface{}{"y"})
	p := NewProduct(a, b)

	rs, err := Collect(p.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if 1 != len(rs) {
		t.Fatalf("got %d results", len(rs))
	}

	// combination -> b's result -> a's result -> nil
	r := rs[0]
	if r.Prev == nil || r.Prev.Prev == nil {
		t.Fatal("provenance chain too short")
	}
	if r.Prev.Prev.Prev != nil {
		t.Fatal("provenance chain too long")
	}
	if _, have := r.Prev.Prev.Bs[b.Id()]; have {
		t.Fatal("a's result shouldn't know about b")
	}
}

func TestProductValidityAnd(t *testing.T) {
	a := NewVariable("a", []interface{}{1, 2})
	f := NewFilter("odd", a, GuardFunc(func(ctx context.Context, named map[string]interface{}) (bool, error) {
		n, _ := named["a"].(int)
		return n%2 == 1, nil
	}))
	b := NewVariable("b", []interface{}{10})
	p := NewProduct(f, b)

	rs, err := Collect(p.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if 2 != len(rs) {
		t.Fatalf("got %d combinations", len(rs))
	}
	if !rs[0].Valid || rs[1].Valid {
		t.Fatalf("got validity %v, %v", rs[0].Valid, rs[1].Valid)
	}
}

func TestProductReplaceChild(t *testing.T) {
	a := NewVariable("a", []interface{}{1})
	b := NewVariable("b", []interface{}{2})
	p := NewProduct(a, b)

	c := NewVariable("c", []interface{}{3})
	if err := p.ReplaceChild(b, c); err != nil {
		t.Fatal(err)
	}
	if p.Children()[1] != c {
		t.Fatal("child not spliced")
	}

	if err := p.ReplaceChild(b, c); err == nil {
		t.Fatal("b isn't a child anymore")
	}
}

func TestProductNoChildren(t *testing.T) {
	p := NewProduct()
	rs, err := Collect(p.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	// The product of zero children is one empty combination.
	if 1 != len(rs) || !rs[0].Valid {
		t.Fatalf("got %#v", rs)
	}
}

func TestProductLazy(t *testing.T) {
	pulls := 0
	n := 0
	src := func() (interface{}, bool, error) {
		pulls++
		x := n
		n++
		return x, true, nil // unbounded
	}

	a := NewVariable("a", src)
	b := NewVariable("b", []interface{}{"x"})
	p := NewProduct(a, b)

	rs := p.Evaluate(context.Background(), NewBindings())
	for i := 0; i < 3; i++ {
		if r, err := rs.Next(); err != nil || r == nil {
			t.Fatal("expected a result")
		}
	}
	if 3 < pulls {
		t.Fatalf("source pulled %d times for 3 combinations", pulls)
	}
}
