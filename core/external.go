package core

import (
	"context"
)

// External is a placeholder leaf with no local domain.
//
// Evaluating an External directly yields no results, whether or not
// the surrounding bindings already have a value for it.  The slot
// performs no lookup and raises nothing.  A host that wants a tree to
// see a value for this slot has to put the binding (under Id()) into
// the Bindings it passes in before evaluation reaches the slot.
type External struct {
	id   Id
	name string
}

// NewExternal makes an External slot.  The name is only for display.
func NewExternal(name string) *External {
	if name == "" {
		name = "External"
	}
	return &External{
		id:   nextId(),
		name: name,
	}
}

func (e *External) Id() Id {
	return e.id
}

func (e *External) Name() string {
	return e.name
}

func (e *External) Origin() Origin {
	return OriginExternal
}

func (e *External) Children() []Node {
	return nil
}

func (e *External) ReplaceChild(old, new Node) error {
	return &NoChildren{e}
}

func (e *External) Evaluate(ctx context.Context, bs Bindings) Results {
	return None()
}
