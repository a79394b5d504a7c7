/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package plan provides declarative descriptions of expression trees.
//
// A Plan is what a host front-end typically loads from YAML and
// compiles into a core.Node tree.  The Plan gives the structure; the
// host supplies the factories (for derived nodes) and the guard
// interpreters (for filters).
package plan

import (
	"context"
	"fmt"

	"github.com/Comcast/rove/core"

	"github.com/jsccast/yaml"
)

// Plan describes an expression tree.
type Plan struct {
	// Name is the generic name for this tree.  Something like
	// "reachable-points".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is general documentation (in Markdown) about what this
	// tree computes.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Root names the node to evaluate.
	Root string `json:"root"`

	// Nodes is the structure of the tree, keyed by node name.
	Nodes map[string]*Def `json:"nodes"`
}

// Def describes one node.
type Def struct {
	// Doc is documentation (in Markdown) for this node.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Kind is one of "variable", "constant", "product",
	// "derived", "external", or "filter".
	Kind string `json:"kind"`

	// Type is the declared element type for a variable or the
	// declared result type for a derived node.
	Type string `json:"type,omitempty" yaml:",omitempty"`

	// Domain gives a variable's explicit domain.
	Domain interface{} `json:"domain,omitempty" yaml:",omitempty"`

	// Value gives a constant's value.
	Value interface{} `json:"value,omitempty" yaml:",omitempty"`

	// Raw, for a constant, opts out of wrapping: the value is
	// treated directly as a multi-element domain.
	Raw bool `json:"raw,omitempty" yaml:",omitempty"`

	// Of names the children of a product (a list) or the child of
	// a filter (a single name).
	Of interface{} `json:"of,omitempty" yaml:",omitempty"`

	// Args maps argument names to node names or raw values for a
	// derived node.  A string that names a defined node refers to
	// that node; anything else is a raw value.
	Args map[string]interface{} `json:"args,omitempty" yaml:",omitempty"`

	// Factory names the registered factory for a derived node.
	// Defaults to Type.
	Factory string `json:"factory,omitempty" yaml:",omitempty"`

	// Interpreter names the guard interpreter for a filter.
	// Defaults to "goja".
	Interpreter string `json:"interpreter,omitempty" yaml:",omitempty"`

	// Guard is the guard source for a filter: either a code
	// string or a map with "code" and optional "requires".
	Guard interface{} `json:"guard,omitempty" yaml:",omitempty"`
}

// Parse reads a Plan from YAML.
func Parse(bs []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(bs, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GuardInterpreter compiles guard source code into a core.Guard.
//
// See the interpreters packages for implementations.
type GuardInterpreter interface {
	CompileGuard(ctx context.Context, code interface{}) (core.Guard, error)
}

// Compiled is the result of compiling a Plan.
type Compiled struct {
	Plan *Plan

	// Root is the compiled tree.
	Root core.Node

	// Nodes maps plan node names to compiled nodes, so a host can
	// find (say) an External slot's Id to pre-populate bindings.
	Nodes map[string]core.Node
}

// Compile builds the core.Node tree that this Plan describes.
//
// The factories map provides the registered factory for each derived
// node, and the interpreters map provides guard interpreters by name.
// Either may be nil if the Plan doesn't need them.
func (p *Plan) Compile(ctx context.Context, factories map[string]core.Factory, interpreters map[string]GuardInterpreter) (*Compiled, error) {
	if p.Root == "" {
		return nil, fmt.Errorf("plan '%s' has no root", p.Name)
	}

	c := &compilation{
		plan:         p,
		factories:    factories,
		interpreters: interpreters,
		nodes:        make(map[string]core.Node, len(p.Nodes)),
		building:     make(map[string]bool, len(p.Nodes)),
	}

	root, err := c.node(ctx, p.Root)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Plan:  p,
		Root:  root,
		Nodes: c.nodes,
	}, nil
}

type compilation struct {
	plan         *Plan
	factories    map[string]core.Factory
	interpreters map[string]GuardInterpreter
	nodes        map[string]core.Node
	building     map[string]bool
}

func (c *compilation) node(ctx context.Context, name string) (core.Node, error) {
	if n, have := c.nodes[name]; have {
		return n, nil
	}
	if c.building[name] {
		return nil, fmt.Errorf("node '%s' contains itself", name)
	}

	def, have := c.plan.Nodes[name]
	if !have {
		return nil, fmt.Errorf("node '%s' is not defined", name)
	}

	c.building[name] = true
	n, err := c.build(ctx, name, def)
	delete(c.building, name)
	if err != nil {
		return nil, err
	}

	c.nodes[name] = n

	return n, nil
}

func (c *compilation) build(ctx context.Context, name string, def *Def) (core.Node, error) {
	switch def.Kind {
	case "variable":
		typeName := def.Type
		if typeName == "" {
			typeName = name
		}
		return core.NewVariable(typeName, def.Domain), nil

	case "constant":
		if def.Raw {
			return core.NewRawConstant(def.Value), nil
		}
		return core.NewNamedConstant(name, def.Value), nil

	case "external":
		return core.NewExternal(name), nil

	case "product":
		names, err := asNames(def.Of)
		if err != nil {
			return nil, fmt.Errorf("product '%s': %v", name, err)
		}
		children := make([]core.Node, 0, len(names))
		for _, child := range names {
			n, err := c.node(ctx, child)
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
		return core.NewProduct(children...), nil

	case "derived":
		factoryName := def.Factory
		if factoryName == "" {
			factoryName = def.Type
		}
		if factoryName == "" {
			return nil, fmt.Errorf("derived '%s' names no factory", name)
		}
		factory, have := c.factories[factoryName]
		if !have {
			return nil, fmt.Errorf("factory '%s' is not registered", factoryName)
		}

		args := make(map[string]interface{}, len(def.Args))
		for arg, v := range def.Args {
			if ref, is := v.(string); is {
				if _, defined := c.plan.Nodes[ref]; defined {
					n, err := c.node(ctx, ref)
					if err != nil {
						return nil, err
					}
					args[arg] = n
					continue
				}
			}
			args[arg] = v
		}

		typeName := def.Type
		if typeName == "" {
			typeName = factoryName
		}

		return core.NewDerived(typeName, factory, args), nil

	case "filter":
		childName, err := asName(def.Of)
		if err != nil {
			return nil, fmt.Errorf("filter '%s': %v", name, err)
		}
		child, err := c.node(ctx, childName)
		if err != nil {
			return nil, err
		}

		interpreterName := def.Interpreter
		if interpreterName == "" {
			interpreterName = "goja"
		}
		interpreter, have := c.interpreters[interpreterName]
		if !have {
			return nil, fmt.Errorf("interpreter '%s' is not available", interpreterName)
		}

		guard, err := interpreter.CompileGuard(ctx, def.Guard)
		if err != nil {
			return nil, fmt.Errorf("filter '%s': %v", name, err)
		}

		return core.NewFilter(name, child, guard), nil

	case "":
		return nil, fmt.Errorf("node '%s' has no kind", name)
	default:
		return nil, fmt.Errorf("unknown node kind '%s' at '%s'", def.Kind, name)
	}
}

func asName(x interface{}) (string, error) {
	s, is := x.(string)
	if !is {
		return "", fmt.Errorf("%#v (%T) isn't a node name", x, x)
	}
	return s, nil
}

func asNames(x interface{}) ([]string, error) {
	switch vv := x.(type) {
	case []string:
		return vv, nil
	case []interface{}:
		acc := make([]string, 0, len(vv))
		for _, y := range vv {
			s, err := asName(y)
			if err != nil {
				return nil, err
			}
			acc = append(acc, s)
		}
		return acc, nil
	default:
		return nil, fmt.Errorf("%#v (%T) isn't a list of node names", x, x)
	}
}
