package core

import (
	"context"

	"github.com/Comcast/rove/replay"
)

// Variable is a leaf node that ranges over an explicit domain of
// values of a declared type.
type Variable struct {
	id       Id
	typeName string
	seq      *replay.Seq
}

// NewVariable makes a Variable of the given declared type over the
// given domain.
//
// The domain may be a slice, an array, a receivable channel, a
// replay.Source, or an already-built *replay.Seq (which is adopted
// as-is, cache included).  A nil domain is the empty domain.  Any
// other domain produces an InvalidDomain error at first consumption,
// not here.
func NewVariable(typeName string, domain interface{}) *Variable {
	return &Variable{
		id:       nextId(),
		typeName: typeName,
		seq:      domainSeq(domain),
	}
}

func (v *Variable) Id() Id {
	return v.id
}

func (v *Variable) Name() string {
	return v.typeName
}

// Origin is always OriginExplicit for a Variable, no matter what the
// caller might prefer.
func (v *Variable) Origin() Origin {
	return OriginExplicit
}

func (v *Variable) Children() []Node {
	return nil
}

func (v *Variable) ReplaceChild(old, new Node) error {
	return &NoChildren{v}
}

// Seq exposes the variable's replayable domain so a host can share it
// with another node or inspect what's been consumed.
func (v *Variable) Seq() *replay.Seq {
	return v.seq
}

// Evaluate yields one valid Result per domain element, in domain
// order, each binding this node's Id to the element.
//
// Repeated evaluations replay the cached domain, so the order (and
// the elements) can't drift between runs even for a single-pass
// domain source.
func (v *Variable) Evaluate(ctx context.Context, bs Bindings) Results {
	c := v.seq.Cursor()
	return ResultsFunc(func() (*Result, error) {
		x, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return &Result{
			Bs:    bs.Extend(v.id, x),
			Valid: true,
		}, nil
	})
}
