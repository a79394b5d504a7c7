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

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"

	"github.com/dop251/goja"
)

// MacroExpander rewrites plan YAML (parsed to generic data) with
// Javascript macros.
//
// The expander loads "driver.js" and then every *.js file in
// "macros/".  The driver should define an expand() function that
// takes the plan as data and returns the rewritten plan.
type MacroExpander struct {
	JS *goja.Runtime
}

func NewMacroExpander() *MacroExpander {
	js := goja.New()

	env := map[string]interface{}{
		"log": func(x interface{}) interface{} {
			if v, is := x.(goja.Value); is {
				x = v.Export()
			}
			bs, err := json.Marshal(&x)
			if err != nil {
				return err
			}
			log.Printf("%s\n", bs)
			return x
		},
	}
	js.Set("_", env)

	return &MacroExpander{
		JS: js,
	}
}

func (m *MacroExpander) run(filename string) error {
	log.Printf("loading %s", filename)

	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}

	_, err = m.JS.RunScript(filename, string(src))

	return err
}

func (m *MacroExpander) loadMacros(dir string) error {
	filenames, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		return err
	}

	for _, filename := range filenames {
		if err = m.run(filename); err != nil {
			return err
		}
	}

	return nil
}

// MacroExpand runs the macros in "driver.js" and "macros/" over x.
func MacroExpand(x interface{}) (interface{}, error) {

	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}

	m := NewMacroExpander()

	if err := m.run("driver.js"); err != nil {
		return nil, err
	}

	if err := m.loadMacros("macros"); err != nil {
		return nil, err
	}

	v, err := m.JS.RunString(fmt.Sprintf("expand(%s)", js))
	if err != nil {
		return nil, err
	}

	return v.Export(), nil
}
