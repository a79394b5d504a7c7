package core

import (
	"context"
)

// Node is one expression in a tree that a host assembles and then
// evaluates.
//
// The tree shape is fixed after construction except through
// ReplaceChild, and leaf types refuse even that.
type Node interface {
	// Id returns the process-unique binding id for this node.
	// The value this node binds appears under this Id in the
	// Bindings of the Results it produces.
	Id() Id

	// Name returns a display name for this node.
	Name() string

	// Origin says where this node's values come from.
	Origin() Origin

	// Children returns this node's owned children, in order.
	// Empty for leaves.
	Children() []Node

	// ReplaceChild splices new in place of old wherever old
	// occurs among the children.  Leaf types return a NoChildren
	// error.
	ReplaceChild(old, new Node) error

	// Evaluate enumerates this node's outcomes given the upstream
	// bindings.  The returned sequence is lazy: nothing happens
	// until the caller pulls.
	Evaluate(ctx context.Context, bs Bindings) Results
}

// Walk calls f on the given node and all of its descendants,
// depth-first, children in order.  Walk stops at the first error.
func Walk(n Node, f func(Node) error) error {
	if err := f(n); err != nil {
		return err
	}
	for _, child := range n.Children() {
		if err := Walk(child, f); err != nil {
			return err
		}
	}
	return nil
}
