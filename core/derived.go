package core

import (
	"sort"
)

// Factory builds one instance of a derived value from named argument
// values.  Factories are registered explicitly; there is no runtime
// type lookup by name.
type Factory func(args map[string]interface{}) (interface{}, error)

// Derived is a node whose values are built by applying a Factory to
// each full combination of its named argument children.
//
// An argument may be an already-built Node or a raw value, which gets
// wrapped as a Constant named after its argument key.  Argument
// children are ordered by name, so enumeration order is deterministic:
// the alphabetically first argument varies slowest.
type Derived struct {
	Product

	typeName string
	factory  Factory

	// argNames maps each argument child's Id to its argument
	// name, used after composition to recover keyword values.
	argNames map[Id]string
}

// NewDerived makes a Derived of the given declared type.
func NewDerived(typeName string, factory Factory, args map[string]interface{}) *Derived {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	children := make([]Node, 0, len(names))
	argNames := make(map[Id]string, len(names))
	for _, name := range names {
		var child Node
		if n, is := args[name].(Node); is {
			child = n
		} else {
			child = NewNamedConstant(name, args[name])
		}
		children = append(children, child)
		argNames[child.Id()] = name
	}

	d := &Derived{
		Product:  newProduct(typeName, children),
		typeName: typeName,
		factory:  factory,
		argNames: argNames,
	}
	d.terminal = d.construct
	return d
}

// Origin is always OriginDeduced for a Derived: its values exist only
// by construction.
func (d *Derived) Origin() Origin {
	return OriginDeduced
}

// ReplaceChild splices new in place of old and moves old's argument
// name over to new's Id.
func (d *Derived) ReplaceChild(old, new Node) error {
	if err := d.Product.ReplaceChild(old, new); err != nil {
		return err
	}
	if name, have := d.argNames[old.Id()]; have {
		delete(d.argNames, old.Id())
		d.argNames[new.Id()] = name
	}
	return nil
}

// construct is the Product terminal step: recover the named argument
// values from the combination's bindings, invoke the factory, and
// bind the produced instance to this node's own Id.
//
// A factory failure is a ConstructionError and aborts the enclosing
// walk.
func (d *Derived) construct(combination *Result) (*Result, error) {
	args := make(map[string]interface{}, len(d.argNames))
	for id, name := range d.argNames {
		if v, have := combination.Bs[id]; have {
			args[name] = v
		}
	}

	instance, err := d.factory(args)
	if err != nil {
		return nil, &ConstructionError{d.typeName, err}
	}

	return &Result{
		Bs:    combination.Bs.Extend(d.id, instance),
		Valid: combination.Valid,
		Prev:  combination,
	}, nil
}
