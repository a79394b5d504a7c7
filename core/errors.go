package core

// These errors are caller errors, not internal errors.  None of them
// is caught or retried inside this package: a bad domain, an
// impossible replacement, or a failing construction aborts the
// enclosing evaluation at the point of first occurrence.

import (
	"fmt"
)

// InvalidDomain occurs when a node's domain can't be iterated.
//
// The error surfaces lazily, at the first pull of the domain, not at
// node construction: a domain may be a producer that's only evaluated
// on demand.
type InvalidDomain struct {
	Domain interface{}
}

func (e *InvalidDomain) Error() string {
	return fmt.Sprintf("invalid domain (%T)", e.Domain)
}

// NoChildren occurs when child replacement is attempted on a leaf.
type NoChildren struct {
	Node Node
}

func (e *NoChildren) Error() string {
	return `node "` + e.Node.Name() + `" has no children`
}

// ConstructionError occurs when a Derived node's factory fails for a
// completed combination.  It's treated as a schema or data defect,
// never retried.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return `construction of "` + e.Name + `" failed: ` + e.Err.Error()
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// ChildNotFound occurs when ReplaceChild is given an old child that
// isn't actually a child.
type ChildNotFound struct {
	Parent Node
	Child  Node
}

func (e *ChildNotFound) Error() string {
	return `node "` + e.Child.Name() + `" is not a child of "` + e.Parent.Name() + `"`
}
