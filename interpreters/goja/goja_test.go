package goja

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/rove/core"
)

func compile(t *testing.T, code interface{}) core.Guard {
	t.Helper()
	g, err := NewInterpreter().CompileGuard(context.Background(), code)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGuardVerdict(t *testing.T) {
	g := compile(t, `return _.bindings["n"] % 2 == 0;`)

	for _, tc := range []struct {
		n    int
		want bool
	}{
		{1, false},
		{2, true},
	} {
		got, err := g.Allow(context.Background(), map[string]interface{}{"n": tc.n})
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Fatalf("n=%d: got %v", tc.n, got)
		}
	}
}

func TestGuardNullIsFalse(t *testing.T) {
	g := compile(t, `return null;`)
	got, err := g.Allow(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("null should deny")
	}
}

func TestGuardObjectIsTrue(t *testing.T) {
	g := compile(t, `return {"because": "reasons"};`)
	got, err := g.Allow(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("an object should allow")
	}
}

func TestGuardInFilter(t *testing.T) {
	g := compile(t, `return 1 < _.bindings["x"];`)

	v := core.NewVariable("x", []interface{}{1, 2, 3})
	f := core.NewFilter("", v, g)

	rs, err := core.Collect(f.Evaluate(context.Background(), core.NewBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 3 {
		t.Fatalf("got %d results", len(rs))
	}
	if rs[0].Valid || !rs[1].Valid || !rs[2].Valid {
		t.Fatalf("got %v %v %v", rs[0].Valid, rs[1].Valid, rs[2].Valid)
	}
}

func TestGuardRequires(t *testing.T) {
	i := NewInterpreter()
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"limits": `var limit = 2;`,
	})

	src := map[string]interface{}{
		"code":     `return _.bindings["x"] < limit;`,
		"requires": "limits",
	}
	g, err := i.CompileGuard(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := g.Allow(context.Background(), map[string]interface{}{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("1 < 2")
	}
}

func TestGuardInterrupt(t *testing.T) {
	i := NewInterpreter()
	i.Testing = true
	g, err := i.CompileGuard(context.Background(), `sleep(200); return true;`)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err = g.Allow(ctx, nil); err == nil {
		t.Fatal("expected an interrupt")
	}
}

func TestGuardBadVerdict(t *testing.T) {
	g := compile(t, `return "maybe";`)
	if _, err := g.Allow(context.Background(), nil); err == nil {
		t.Fatal("expected an error")
	}
}
