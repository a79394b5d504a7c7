package core

import (
	"context"
)

// Guard decides whether one outcome is acceptable.
//
// The bindings arrive keyed by display name (see Bindings.Named), so
// a Guard doesn't have to know about Ids.
type Guard interface {
	Allow(ctx context.Context, named map[string]interface{}) (bool, error)
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(ctx context.Context, named map[string]interface{}) (bool, error)

func (f GuardFunc) Allow(ctx context.Context, named map[string]interface{}) (bool, error) {
	return f(ctx, named)
}

// Filter wraps a child and ANDs a Guard's verdict into the validity
// flag of each of the child's results.
//
// A Filter doesn't drop anything: an unacceptable combination still
// flows out, marked invalid, so enumeration order and count stay
// deterministic for the consumer.
type Filter struct {
	id    Id
	name  string
	child Node
	guard Guard
}

// NewFilter makes a Filter over the given child.
func NewFilter(name string, child Node, guard Guard) *Filter {
	if name == "" {
		name = "Filter"
	}
	return &Filter{
		id:    nextId(),
		name:  name,
		child: child,
		guard: guard,
	}
}

func (f *Filter) Id() Id {
	return f.id
}

func (f *Filter) Name() string {
	return f.name
}

func (f *Filter) Origin() Origin {
	return OriginDeduced
}

func (f *Filter) Children() []Node {
	return []Node{f.child}
}

func (f *Filter) ReplaceChild(old, new Node) error {
	if f.child != old {
		return &ChildNotFound{f, old}
	}
	f.child = new
	return nil
}

func (f *Filter) Evaluate(ctx context.Context, bs Bindings) Results {
	rs := f.child.Evaluate(ctx, bs)
	return ResultsFunc(func() (*Result, error) {
		r, err := rs.Next()
		if err != nil || r == nil {
			return nil, err
		}

		ok, err := f.guard.Allow(ctx, r.Bs.Named(f.child))
		if err != nil {
			return nil, err
		}

		return &Result{
			Bs:    r.Bs,
			Valid: r.Valid && ok,
			Prev:  r,
		}, nil
	})
}
