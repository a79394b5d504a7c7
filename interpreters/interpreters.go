/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package interpreters provides guard-code interpreters for Filter
// nodes.
package interpreters

import (
	"context"

	"github.com/Comcast/rove/core"
	"github.com/Comcast/rove/interpreters/goja"
	"github.com/Comcast/rove/interpreters/noop"
	"github.com/Comcast/rove/interpreters/pattern"
)

// Interpreter compiles guard source code into a core.Guard.
type Interpreter interface {
	// CompileGuard can block if the interpreter has to fetch
	// libraries.  The code is either a plain source string or a
	// map with "code" and optional "requires" properties.
	CompileGuard(ctx context.Context, code interface{}) (core.Guard, error)
}

// Standard returns the interpreters this repo ships.
func Standard() map[string]Interpreter {
	is := make(map[string]Interpreter)

	is["goja"] = goja.NewInterpreter()
	is["ecmascript"] = is["goja"]

	is["noop"] = noop.NewInterpreter()

	is["pattern"] = pattern.NewInterpreter()

	return is
}
