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

// Package params derives typed parameter variables from class
// schemas.
//
// Given a description of classes and their fields, Parameterize walks
// the fields recursively and emits one Param per scalar field, named
// by its dotted path from the root class ("Robot.arm.length").
package params

import (
	"fmt"

	"github.com/Comcast/rove/core"
)

// Kind classifies a parameter.
type Kind int

const (
	// Continuous parameters come from float fields.
	Continuous Kind = iota

	// Integer parameters come from int fields.
	Integer

	// Symbolic parameters come from enum fields and carry the
	// enum's values.
	Symbolic
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Symbolic:
		return "symbolic"
	default:
		return fmt.Sprintf("<bad kind %d>", k)
	}
}

// Param is one derived parameter.
type Param struct {
	// Name is the dotted path from the root class.
	Name string `json:"name"`

	Kind Kind `json:"kind"`

	// Values holds a Symbolic parameter's possible values.
	Values []interface{} `json:"values,omitempty"`
}

// Variable makes a range variable for this parameter.
//
// If the given domain is nil and the parameter is Symbolic, the
// variable ranges over the parameter's values.
func (p Param) Variable(domain interface{}) *core.Variable {
	if domain == nil && p.Kind == Symbolic {
		domain = p.Values
	}
	return core.NewVariable(p.Name, domain)
}

// Field describes one field of a class.
type Field struct {
	Name string `json:"name" yaml:"name"`

	// Type is the field's endpoint type: "int", "float",
	// "timestamp", or (for relationships) a class name.
	Type string `json:"type" yaml:"type"`

	// Enum holds the possible values of an enum field.
	Enum []interface{} `json:"enum,omitempty" yaml:"enum,omitempty"`

	// TypeType marks a field that holds a type rather than a
	// value.
	TypeType bool `json:"typeType,omitempty" yaml:"typeType,omitempty"`

	// OneToMany marks a collection-valued relationship.
	OneToMany bool `json:"oneToMany,omitempty" yaml:"oneToMany,omitempty"`

	// OneToOne marks a single-valued relationship to the class
	// named by Type.
	OneToOne bool `json:"oneToOne,omitempty" yaml:"oneToOne,omitempty"`
}

// Class describes one class.
type Class struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Schema is a set of classes, keyed by name.
type Schema map[string]*Class

// Parameterize derives the parameters for the named class.
//
// Timestamp fields, type-valued fields, and one-to-many
// relationships contribute nothing.  One-to-one relationships (to a
// class the Schema knows) recurse with the field's path as the
// prefix.  Fields of any other non-scalar type are skipped.
func (s Schema) Parameterize(className string) ([]Param, error) {
	c, have := s[className]
	if !have {
		return nil, fmt.Errorf("class '%s' is not in the schema", className)
	}
	walking := map[string]bool{
		className: true,
	}
	return s.class(c, c.Name, walking)
}

func (s Schema) class(c *Class, prefix string, walking map[string]bool) ([]Param, error) {
	acc := make([]Param, 0, len(c.Fields))
	for _, f := range c.Fields {
		ps, err := s.field(f, prefix, walking)
		if err != nil {
			return nil, err
		}
		acc = append(acc, ps...)
	}
	return acc, nil
}

func (s Schema) field(f Field, prefix string, walking map[string]bool) ([]Param, error) {
	name := prefix + "." + f.Name

	if f.Type == "timestamp" || f.TypeType || f.OneToMany {
		return nil, nil
	}

	if f.OneToOne && len(f.Enum) == 0 {
		target, have := s[f.Type]
		if !have {
			return nil, nil
		}
		if walking[f.Type] {
			return nil, fmt.Errorf("class cycle at '%s'", name)
		}
		walking[f.Type] = true
		ps, err := s.class(target, name, walking)
		delete(walking, f.Type)
		return ps, err
	}

	if 0 < len(f.Enum) {
		return []Param{{
			Name:   name,
			Kind:   Symbolic,
			Values: f.Enum,
		}}, nil
	}

	switch f.Type {
	case "int":
		return []Param{{
			Name: name,
			Kind: Integer,
		}}, nil
	case "float":
		return []Param{{
			Name: name,
			Kind: Continuous,
		}}, nil
	}

	return nil, nil
}
