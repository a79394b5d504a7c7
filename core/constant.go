package core

import (
	"context"
	"fmt"

	"github.com/Comcast/rove/replay"
)

// Constant is a leaf node wrapping a fixed value.
//
// By default the value becomes a single-element domain, so an
// iterable value (say a slice) is bound as one opaque value rather
// than expanded into several results.  Use NewRawConstant to opt out
// and treat the value directly as a multi-element domain.
type Constant struct {
	id       Id
	override string
	typeName string
	seq      *replay.Seq

	name string
}

// NewConstant wraps the given value in a single-element domain.
func NewConstant(value interface{}) *Constant {
	return &Constant{
		id:  nextId(),
		seq: replay.NewSeq(replay.Slice([]interface{}{value})),
	}
}

// NewNamedConstant is NewConstant with an explicit display name.
func NewNamedConstant(name string, value interface{}) *Constant {
	c := NewConstant(value)
	c.override = name
	return c
}

// NewTypedConstant is NewConstant with a declared type that's used
// for the display name.
func NewTypedConstant(typeName string, value interface{}) *Constant {
	c := NewConstant(value)
	c.typeName = typeName
	return c
}

// NewRawConstant treats the given value directly as a domain: a
// slice of three elements yields three results.  A value that can't
// be iterated gives an InvalidDomain error at first consumption.
func NewRawConstant(domain interface{}) *Constant {
	return &Constant{
		id:  nextId(),
		seq: domainSeq(domain),
	}
}

func (c *Constant) Id() Id {
	return c.id
}

// Name returns the explicit name if one was given, else a name
// derived from the declared type, else a name introspected from the
// runtime type of the first domain element.
func (c *Constant) Name() string {
	if c.name != "" {
		return c.name
	}
	switch {
	case c.override != "":
		c.name = c.override
	case c.typeName != "":
		c.name = "Constant(" + c.typeName + ")"
	default:
		x, ok, err := c.seq.First()
		if err != nil || !ok {
			return "Constant(?)" // don't cache
		}
		c.name = fmt.Sprintf("Constant(%T, ...)", x)
	}
	return c.name
}

func (c *Constant) Origin() Origin {
	return OriginExplicit
}

func (c *Constant) Children() []Node {
	return nil
}

func (c *Constant) ReplaceChild(old, new Node) error {
	return &NoChildren{c}
}

func (c *Constant) Evaluate(ctx context.Context, bs Bindings) Results {
	cursor := c.seq.Cursor()
	return ResultsFunc(func() (*Result, error) {
		x, ok, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return &Result{
			Bs:    bs.Extend(c.id, x),
			Valid: true,
		}, nil
	})
}
