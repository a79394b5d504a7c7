package core

import (
	"context"
	"reflect"
	"testing"
)

func TestConstantWrapsIterables(t *testing.T) {
	// The whole list is one opaque value, not three results.
	c := NewConstant([]interface{}{1, 2, 3})

	got := values(t, c, nil)
	if 1 != len(got) {
		t.Fatalf("got %d results", len(got))
	}
	if !reflect.DeepEqual(got[0], []interface{}{1, 2, 3}) {
		t.Fatalf("got %#v", got[0])
	}
}

func TestConstantRepeatable(t *testing.T) {
	c := NewConstant("x")
	for i := 0; i < 3; i++ {
		if got := values(t, c, nil); 1 != len(got) || got[0] != "x" {
			t.Fatalf("run %d: got %#v", i, got)
		}
	}
}

func TestRawConstantExpands(t *testing.T) {
	c := NewRawConstant([]interface{}{1, 2, 3})

	got := values(t, c, nil)
	if !reflect.DeepEqual(got, []interface{}{1, 2, 3}) {
		t.Fatalf("got %#v", got)
	}
}

func TestRawConstantInvalid(t *testing.T) {
	c := NewRawConstant(42)
	if _, err := Collect(c.Evaluate(context.Background(), NewBindings())); err == nil {
		t.Fatal("expected an error")
	}
}

func TestConstantNames(t *testing.T) {
	if got := NewNamedConstant("limit", 10).Name(); got != "limit" {
		t.Fatalf("got %s", got)
	}
	if got := NewTypedConstant("int", 10).Name(); got != "Constant(int)" {
		t.Fatalf("got %s", got)
	}
	// No explicit name, no declared type: introspect the first
	// domain element.
	if got := NewConstant("x").Name(); got != "Constant(string, ...)" {
		t.Fatalf("got %s", got)
	}
}
