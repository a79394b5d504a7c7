package core

// Result is one outcome produced during an evaluation.
//
// A Result is never modified after its producer hands it out.
type Result struct {
	// Bs is the snapshot of the bindings for this outcome.
	Bs Bindings `json:"bs"`

	// Valid reports whether this outcome is acceptable.  Leaves
	// always produce valid Results; composition ANDs validity
	// along the path, and a Filter can turn it off.
	Valid bool `json:"valid"`

	// Prev links to the Result that this Result extends, forming
	// a chain back toward the evaluation root.
	Prev *Result `json:"-"`
}

// Results is a lazy sequence of Results.
//
// Next returns nil (with a nil error) when the sequence is exhausted.
// Errors abort the enumeration: after a non-nil error, don't call
// Next again.
type Results interface {
	Next() (*Result, error)
}

// ResultsFunc adapts a function to the Results interface.
type ResultsFunc func() (*Result, error)

func (f ResultsFunc) Next() (*Result, error) {
	return f()
}

var none = ResultsFunc(func() (*Result, error) {
	return nil, nil
})

// None is the empty sequence of Results.
func None() Results {
	return none
}

// Collect drains the given Results into a slice.
//
// Don't call Collect on an unbounded enumeration.
func Collect(rs Results) ([]*Result, error) {
	acc := make([]*Result, 0, 8)
	for {
		r, err := rs.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			return acc, nil
		}
		acc = append(acc, r)
	}
}

// ValuesOf drains the given Results, projecting out the value bound
// for the given Id in each.
func ValuesOf(rs Results, id Id) ([]interface{}, error) {
	results, err := Collect(rs)
	if err != nil {
		return nil, err
	}
	acc := make([]interface{}, 0, len(results))
	for _, r := range results {
		if v, have := r.Bs[id]; have {
			acc = append(acc, v)
		}
	}
	return acc, nil
}
