package core

import (
	"context"
)

// Product is the correlated cartesian composition of an ordered list
// of children.
//
// Given upstream bindings B, Product enumerates child 0 against B;
// for each of child 0's results r0, it enumerates child 1 against
// r0's bindings; and so on.  Each full depth-n path produces one
// combination whose bindings are the union along the path and whose
// validity is the AND along the path.  Child 0 varies slowest and the
// last child varies fastest, so the order is the classic nested-loop
// order and is reproducible given deterministic child domains.
//
// Because a later child is evaluated against the bindings of the
// earlier ones, its domain may be correlated with its siblings'
// values.  This is not a blind cross product.
type Product struct {
	id       Id
	name     string
	children []Node

	// terminal optionally post-processes each completed
	// combination instead of yielding it verbatim.  Returning a
	// nil Result (and nil error) drops the combination.
	terminal func(*Result) (*Result, error)
}

func newProduct(name string, children []Node) Product {
	return Product{
		id:       nextId(),
		name:     name,
		children: children,
	}
}

// NewProduct makes a Product over the given children.
func NewProduct(children ...Node) *Product {
	p := newProduct("Product", children)
	return &p
}

func (p *Product) Id() Id {
	return p.id
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Origin() Origin {
	return OriginDeduced
}

func (p *Product) Children() []Node {
	acc := make([]Node, len(p.children))
	copy(acc, p.children)
	return acc
}

// ReplaceChild splices new in place of old wherever old occurs.
func (p *Product) ReplaceChild(old, new Node) error {
	found := false
	for i, child := range p.children {
		if child == old {
			p.children[i] = new
			found = true
		}
	}
	if !found {
		return &ChildNotFound{p, old}
	}
	return nil
}

// frame is one level of the nested enumeration.
type frame struct {
	rs Results
	r  *Result
}

// Evaluate enumerates the combinations.
//
// The implementation is an explicit backtracking state machine: a
// stack of per-child frames, where advancing the deepest frame either
// completes a combination (at full depth) or opens the next child's
// enumeration against the extended bindings.
func (p *Product) Evaluate(ctx context.Context, bs Bindings) Results {
	if len(p.children) == 0 {
		// The product of zero children is one empty combination.
		done := false
		return ResultsFunc(func() (*Result, error) {
			if done {
				return nil, nil
			}
			done = true
			return p.emit(&Result{Bs: bs, Valid: true})
		})
	}

	stack := []*frame{{rs: p.children[0].Evaluate(ctx, bs)}}

	return ResultsFunc(func() (*Result, error) {
		for 0 < len(stack) {
			top := stack[len(stack)-1]

			r, err := top.rs.Next()
			if err != nil {
				return nil, err
			}
			if r == nil {
				// This child is exhausted here; backtrack.
				stack = stack[:len(stack)-1]
				continue
			}

			// Link the fresh result to the one it extends.
			// The result was just created by the child and
			// nobody else has seen it yet.
			if 1 < len(stack) {
				r.Prev = stack[len(stack)-2].r
			}
			top.r = r

			if len(stack) < len(p.children) {
				stack = append(stack, &frame{
					rs: p.children[len(stack)].Evaluate(ctx, r.Bs),
				})
				continue
			}

			valid := true
			for _, f := range stack {
				valid = valid && f.r.Valid
			}

			combination, err := p.emit(&Result{
				Bs:    r.Bs,
				Valid: valid,
				Prev:  r,
			})
			if err != nil {
				return nil, err
			}
			if combination == nil {
				continue
			}
			return combination, nil
		}
		return nil, nil
	})
}

func (p *Product) emit(combination *Result) (*Result, error) {
	if p.terminal == nil {
		return combination, nil
	}
	return p.terminal(combination)
}
