package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type Point struct {
	X int
	Y int
}

func pointFactory(args map[string]interface{}) (interface{}, error) {
	x, is := args["x"].(int)
	if !is {
		return nil, fmt.Errorf("bad x: %#v", args["x"])
	}
	y, is := args["y"].(int)
	if !is {
		return nil, fmt.Errorf("bad y: %#v", args["y"])
	}
	return Point{X: x, Y: y}, nil
}

func TestDerivedPoints(t *testing.T) {
	d := NewDerived("Point", pointFactory, map[string]interface{}{
		"x": NewVariable("x", []interface{}{1, 2}),
		"y": NewVariable("y", []interface{}{10, 20}),
	})

	rs, err := Collect(d.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}

	want := []Point{{1, 10}, {1, 20}, {2, 10}, {2, 20}}
	if len(rs) != len(want) {
		t.Fatalf("got %d results", len(rs))
	}
	for i, r := range rs {
		if got := r.Bs[d.Id()]; got != want[i] {
			t.Fatalf("at %d: got %#v, wanted %#v", i, got, want[i])
		}
		if !r.Valid {
			t.Fatalf("at %d: invalid", i)
		}
	}
}

func TestDerivedRawArgs(t *testing.T) {
	// Raw argument values become Constants named after their keys.
	d := NewDerived("Point", pointFactory, map[string]interface{}{
		"x": NewVariable("x", []interface{}{1, 2}),
		"y": 10,
	})

	for _, child := range d.Children() {
		if child.Name() == "y" {
			if _, is := child.(*Constant); !is {
				t.Fatalf("y is a %T", child)
			}
		}
	}

	got := values(t, d, nil)
	want := []interface{}{Point{1, 10}, Point{2, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestDerivedOrigin(t *testing.T) {
	d := NewDerived("Point", pointFactory, nil)
	if d.Origin() != OriginDeduced {
		t.Fatalf("got %s", d.Origin())
	}
}

func TestDerivedProvenance(t *testing.T) {
	d := NewDerived("Point", pointFactory, map[string]interface{}{
		"x": 1,
		"y": 2,
	})

	rs, err := Collect(d.Evaluate(context.Background(), NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if 1 != len(rs) {
		t.Fatalf("got %d results", len(rs))
	}

	// The derived result extends the terminal combination.
	comb := rs[0].Prev
	if comb == nil {
		t.Fatal("no provenance")
	}
	if _, have := comb.Bs[d.Id()]; have {
		t.Fatal("the combination shouldn't have the instance yet")
	}
}

func TestDerivedConstructionError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDerived("Broken", func(args map[string]interface{}) (interface{}, error) {
		return nil, boom
	}, map[string]interface{}{
		"x": NewVariable("x", []interface{}{1, 2}),
	})

	_, err := Collect(d.Evaluate(context.Background(), NewBindings()))
	if err == nil {
		t.Fatal("expected an error")
	}
	var ce *ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("got %T: %v", err, err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause lost")
	}
}

func TestDerivedNested(t *testing.T) {
	inner := NewDerived("Point", pointFactory, map[string]interface{}{
		"x": NewVariable("x", []interface{}{1, 2}),
		"y": 0,
	})
	outer := NewDerived("shift", func(args map[string]interface{}) (interface{}, error) {
		p := args["p"].(Point)
		return Point{p.X + 100, p.Y}, nil
	}, map[string]interface{}{
		"p": inner,
	})

	got := values(t, outer, nil)
	want := []interface{}{Point{101, 0}, Point{102, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestDerivedReplaceChild(t *testing.T) {
	x := NewVariable("x", []interface{}{1})
	d := NewDerived("Point", pointFactory, map[string]interface{}{
		"x": x,
		"y": 5,
	})

	x2 := NewVariable("x", []interface{}{7})
	if err := d.ReplaceChild(x, x2); err != nil {
		t.Fatal(err)
	}

	got := values(t, d, nil)
	want := []interface{}{Point{7, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}
