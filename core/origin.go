package core

// Origin says where a node's domain of values comes from.
//
// A node type declares its own Origin at construction.  There is no
// way to override it later: a Variable is always OriginExplicit, a
// Derived is always OriginDeduced, and an External is always
// OriginExternal.
type Origin int

const (
	// OriginExplicit means the domain values were supplied by the
	// caller at construction.
	OriginExplicit Origin = iota

	// OriginDeduced means the domain values are computed by the
	// node's own evaluation.
	OriginDeduced

	// OriginExternal means values are supplied later by the
	// surrounding execution context.  The node itself can't
	// enumerate anything.
	OriginExternal
)

func (o Origin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit"
	case OriginDeduced:
		return "deduced"
	case OriginExternal:
		return "external"
	default:
		return "unknown"
	}
}
