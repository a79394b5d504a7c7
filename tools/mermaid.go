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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Comcast/rove/plan"
)

type MermaidOpts struct {
	// ShowDomains will result in a node label that includes the
	// JSON representation of the node's domain (if any).
	ShowDomains bool `json:"showDomains"`

	// DerivedFill is the fill color for derived nodes.  Does not
	// apply if DerivedClass is set.
	DerivedFill string `json:"derivedFill,omitempty"`

	// DerivedClass will be the CSS class for derived nodes.  Not
	// yet implemented.
	DerivedClass string `json:"derivedClass,omitempty"`

	PrettyDomains bool `json:"prettyDomains,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given plan.
func Mermaid(p *plan.Plan, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowDomains:   true,
			DerivedFill:   "#bcf2db",
			PrettyDomains: true,
		}
	}

	log.Printf("processing %d nodes", len(p.Nodes))

	fmt.Fprintf(w, "graph TB\n")

	nids := make(map[string]string)
	num := 0

	node := func(name string, def *plan.Def) (string, error) {
		if nid, already := nids[name]; already {
			return nid, nil

		}
		num++
		nid := fmt.Sprintf("n%d", num)
		nids[name] = nid

		label := name
		if def != nil && opts.ShowDomains && def.Domain != nil {
			var bs []byte
			var err error
			bs, err = json.Marshal(def.Domain)
			if err == nil && opts.PrettyDomains && 40 < len(bs) {
				bs, err = json.MarshalIndent(def.Domain, "", "  ")
			}
			if err != nil {
				return "", err
			}
			js := string(bs)
			js = strings.Replace(js, `"`, `'`, -1)
			label = fmt.Sprintf("%s<pre>%s</pre>", name, js)
		}

		if def != nil && (def.Kind == "derived" || def.Kind == "filter") {
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, label)
			if opts.DerivedClass == "" && opts.DerivedFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.DerivedFill)
			}
		} else {
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, label)
		}

		return nid, nil
	}

	process := func(name string, def *plan.Def) error {
		nid, err := node(name, def)
		if err != nil {
			log.Printf("process error with %s: %v", name, err)
			return err
		}

		for _, edge := range Edges(p, name) {
			to, err := node(edge.To, p.Nodes[edge.To])
			if err != nil {
				log.Printf("process edge error with %s: %v", edge.To, err)
				return err
			}

			label := ""
			if edge.Label != "" {
				label = fmt.Sprintf(`-- "%s"`, edge.Label)
			}

			fmt.Fprintf(w, "  %s %s --> %s\n", nid, label, to)
		}

		return nil
	}

	if root, have := p.Nodes[p.Root]; have {
		process(p.Root, root)
	}

	for _, name := range nodeNames(p) {
		if name == p.Root {
			continue
		}
		process(name, p.Nodes[name])
	}

	fmt.Fprintf(w, "\n")
	log.Printf("mermaid gen done")

	return w.Close()
}
