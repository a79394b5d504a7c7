/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"sort"

	"github.com/Comcast/rove/plan"
)

// PlanAnalysis reports on the structure of a plan.
type PlanAnalysis struct {
	plan *plan.Plan

	Errors       []string
	NodeCount    int
	Edges        int
	Guards       int
	Leaves       []string
	Orphans      []string
	MissingRefs  []string
	Kindless     []string
	Interpreters []string
}

// Analyze looks over a plan's structure without compiling it.
func Analyze(p *plan.Plan) (*PlanAnalysis, error) {

	a := PlanAnalysis{
		plan:      p,
		NodeCount: len(p.Nodes),
		Errors:    make([]string, 0, 8),
	}

	var (
		leaves       = make([]string, 0, len(p.Nodes))
		referenced   = make(map[string]bool)
		interpreters = make(map[string]bool)
		missing      = make(map[string]bool)
		kindless     = make(map[string]bool)
	)

	referenced[p.Root] = true
	if _, have := p.Nodes[p.Root]; !have {
		missing[p.Root] = true
	}

	for _, name := range nodeNames(p) {
		def := p.Nodes[name]

		if def.Kind == "" {
			kindless[name] = true
		}

		if def.Guard != nil {
			a.Guards++
			interpreter := def.Interpreter
			if interpreter == "" {
				interpreter = "goja"
			}
			interpreters[interpreter] = true
		}

		edges := Edges(p, name)
		if len(edges) == 0 {
			leaves = append(leaves, name)
		}
		for _, edge := range edges {
			a.Edges++
			referenced[edge.To] = true
			if _, have := p.Nodes[edge.To]; !have {
				missing[edge.To] = true
			}
		}
	}

	a.Leaves = leaves
	a.Orphans = keysToStringSlice(unreferenced(p.Nodes, referenced))
	a.MissingRefs = keysToStringSlice(missing)
	a.Kindless = keysToStringSlice(kindless)
	a.Interpreters = keysToStringSlice(interpreters, "default")

	return &a, nil
}

// keysToStringSlice converts the keys from a map into a sorted
// slice.  Optionally, it can add a default value if the map is
// empty.
func keysToStringSlice(m map[string]bool, defaultValue ...string) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)

	if len(list) == 0 && 0 < len(defaultValue) {
		return []string{defaultValue[0]}
	}

	return list
}

// unreferenced identifies the nodes that nothing refers to.
func unreferenced(all map[string]*plan.Def, used map[string]bool) map[string]bool {
	diff := make(map[string]bool)
	for key := range all {
		if _, found := used[key]; !found {
			diff[key] = true
		}
	}
	return diff
}
