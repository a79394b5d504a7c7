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

// Package pattern provides declarative guards based on pattern
// matching.
//
// A pattern is a JSON-style structure that can contain pattern
// variables: strings starting with '?'.  Matching a pattern against a
// fact either fails or produces bindings for those variables.
//
//	{"x": "?n"}  matched against  {"x": 1, "y": 2}  gives  {"?n": 1}
//
// A map pattern requires each of its keys to be present and matching;
// extra keys in the fact are ignored.  An array pattern requires each
// of its elements to match some element of the fact's array, which
// can produce multiple alternate bindings.  The variable "?" is
// anonymous: it matches anything and binds nothing.
package pattern

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Comcast/rove/core"
)

// Bindings maps pattern variables to their values.
type Bindings map[string]interface{}

// IsVariable reports whether the given string is a pattern variable.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

func isAnonymous(s string) bool {
	return s == "?"
}

func (bs Bindings) extend(v string, x interface{}) Bindings {
	acc := make(Bindings, len(bs)+1)
	for k, val := range bs {
		acc[k] = val
	}
	acc[v] = x
	return acc
}

// Match matches the pattern against the fact, extending the given
// bindings.
//
// The result is nil when the match fails and has at least one
// Bindings when it succeeds.  Array matching can produce more than
// one.
func Match(pattern interface{}, fact interface{}, bs Bindings) ([]Bindings, error) {
	if bs == nil {
		bs = make(Bindings)
	}

	switch p := pattern.(type) {
	case string:
		if IsVariable(p) {
			if isAnonymous(p) {
				return []Bindings{bs}, nil
			}
			if bound, have := bs[p]; have {
				return Match(bound, fact, bs)
			}
			return []Bindings{bs.extend(p, fact)}, nil
		}
		if s, is := fact.(string); is && s == p {
			return []Bindings{bs}, nil
		}
		return nil, nil

	case map[string]interface{}:
		m, is := fact.(map[string]interface{})
		if !is {
			return nil, nil
		}
		acc := []Bindings{bs}
		for k, v := range p {
			if IsVariable(k) {
				return nil, fmt.Errorf("property variable '%s' is not supported", k)
			}
			val, have := m[k]
			if !have {
				return nil, nil
			}
			var next []Bindings
			for _, b := range acc {
				bss, err := Match(v, val, b)
				if err != nil {
					return nil, err
				}
				next = append(next, bss...)
			}
			if next == nil {
				return nil, nil
			}
			acc = next
		}
		return acc, nil

	case []interface{}:
		xs, is := fact.([]interface{})
		if !is {
			return nil, nil
		}
		acc := []Bindings{bs}
		for _, v := range p {
			var next []Bindings
			for _, b := range acc {
				for _, x := range xs {
					bss, err := Match(v, x, b)
					if err != nil {
						return nil, err
					}
					next = append(next, bss...)
				}
			}
			if next == nil {
				return nil, nil
			}
			acc = next
		}
		return acc, nil

	case nil:
		if fact == nil {
			return []Bindings{bs}, nil
		}
		return nil, nil

	default:
		if atomEqual(pattern, fact) {
			return []Bindings{bs}, nil
		}
		return nil, nil
	}
}

// atomEqual compares atoms numerically when possible, so a pattern 1
// matches a fact 1.0 (which is what JSON deserialization gives).
func atomEqual(x, y interface{}) bool {
	if x == y {
		return true
	}
	xf, xok := asFloat(x)
	yf, yok := asFloat(y)
	return xok && yok && xf == yf
}

func asFloat(x interface{}) (float64, bool) {
	switch v := x.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Interpreter compiles patterns into guards.
//
// The guard code is the pattern itself: either a structure or a JSON
// string.  The compiled guard matches the pattern against the named
// bindings and votes for any result that matches.
type Interpreter struct {
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) CompileGuard(ctx context.Context, code interface{}) (core.Guard, error) {
	pat := code
	if s, is := code.(string); is {
		if err := json.Unmarshal([]byte(s), &pat); err != nil {
			return nil, fmt.Errorf("pattern parse error: %s on %s", err, s)
		}
	}

	// Check for pattern errors at compile time.
	if _, err := Match(pat, map[string]interface{}{}, nil); err != nil {
		return nil, err
	}

	return core.GuardFunc(func(ctx context.Context, named map[string]interface{}) (bool, error) {
		fact := make(map[string]interface{}, len(named))
		for k, v := range named {
			fact[k] = v
		}
		bss, err := Match(pat, fact, nil)
		if err != nil {
			return false, err
		}
		return 0 < len(bss), nil
	}), nil
}
