package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/Comcast/rove/plan"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given plan.  A really ugly
// dot file.
//
// The optional highlight can be the name of a node to render in red.
func Dot(p *plan.Plan, w io.WriteCloser, highlight string) error {

	log.Printf("processing %d nodes", len(p.Nodes))

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	seen := make(map[string]bool)
	node := func(name string, def *plan.Def) error {
		if def == nil {
			return fmt.Errorf("Unknown node '%s'", name)
		}

		if _, already := seen[name]; already {
			return nil
		}
		seen[name] = true

		label := name
		if def.Doc != "" {
			doc := def.Doc
			if 40 < len(doc) {
				period := strings.Index(doc, ". ")
				if 0 < period {
					doc = doc[0 : period+1]
				}
			}
			label += "<BR/><FONT POINT-SIZE='8'>" + doc + "</FONT>"
		}

		fillcolor := "#99ddc8"
		shape := "record"
		switch def.Kind {
		case "variable":
			fillcolor = "#52aa5e"
		case "external":
			fillcolor = "#2d93ad"
		case "derived":
			fillcolor = "#bcf2db"
			shape = "note"
		case "filter":
			fillcolor = "#f2e2bc"
			shape = "note"
		}

		if def.Domain != nil {
			ys, err := yaml.Marshal(def.Domain)
			if err != nil {
				ys = []byte(err.Error())
			}
			src := string(ys)
			src = strings.Replace(src, "<", `&lt;`, -1)
			src = strings.Replace(src, ">", `&gt;`, -1)
			label += `<FONT POINT-SIZE="6">` +
				`<BR/>` + strings.Replace(src, "\n", `<BR ALIGN="LEFT"/>`, -1) + `<BR/>` +
				`</FONT>`
		}

		if src, is := def.Guard.(string); is {
			src = strings.Replace(src, "<", `&lt;`, -1)
			src = strings.Replace(src, ">", `&gt;`, -1)
			label += `<FONT POINT-SIZE="6">` +
				`<BR/>` + strings.Replace(src+"\n", "\n", `<BR ALIGN="LEFT"/>`, -1) + `<BR/>` +
				`</FONT>`
		}

		color := "black"
		style := "filled"
		if highlight == name {
			color = "red"
			fillcolor = "#f98b8b"
		}
		if name == p.Root {
			style += ",bold"
		}
		label = strings.Replace(label, "\n", "", -1)

		fmt.Fprintf(w, "  %s [shape=\"%s\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			name, shape, style, color, fillcolor, label)

		return nil
	}

	process := func(name string, def *plan.Def) error {
		if err := node(name, def); err != nil {
			log.Printf("process error with %s: %v", name, err)
			return err
		}
		for _, edge := range Edges(p, name) {
			if err := node(edge.To, p.Nodes[edge.To]); err != nil {
				log.Printf("process edge error with %s: %v", edge.To, err)
				return err
			}
			color := "black"
			if highlight == name {
				color = "red"
			}
			fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" label = <%s> ]\n",
				name, edge.To, color, edge.Label)
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

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// Edge is one parent-to-child reference in a plan.
type Edge struct {
	To    string
	Label string
}

// Edges lists the outgoing edges of the named plan node (in a
// deterministic order).
func Edges(p *plan.Plan, name string) []Edge {
	def, have := p.Nodes[name]
	if !have {
		return nil
	}

	acc := make([]Edge, 0, 4)

	switch vv := def.Of.(type) {
	case string:
		acc = append(acc, Edge{To: vv})
	case []interface{}:
		for i, x := range vv {
			if s, is := x.(string); is {
				acc = append(acc, Edge{
					To:    s,
					Label: fmt.Sprintf("%d/%d", i+1, len(vv)),
				})
			}
		}
	case []string:
		for i, s := range vv {
			acc = append(acc, Edge{
				To:    s,
				Label: fmt.Sprintf("%d/%d", i+1, len(vv)),
			})
		}
	}

	args := make([]string, 0, len(def.Args))
	for arg := range def.Args {
		args = append(args, arg)
	}
	sort.Strings(args)
	for _, arg := range args {
		if s, is := def.Args[arg].(string); is {
			if _, defined := p.Nodes[s]; defined {
				acc = append(acc, Edge{
					To:    s,
					Label: arg,
				})
			}
		}
	}

	return acc
}

func nodeNames(p *plan.Plan) []string {
	names := make([]string, 0, len(p.Nodes))
	for name := range p.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PNG generates a PNG image based on output from Dot.
//
// This function will write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(p *plan.Plan, basename string, highlight string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	// ToDo: Use mktemp
	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(p, dotfile, highlight); err != nil {
		return pngname, err
	}

	pngfile, err := os.Create(pngname)
	if err != nil {
		return pngname, err
	}
	defer pngfile.Close()

	cmd := exec.Command("dot", "-Tpng", dotname)
	cmd.Stdout = pngfile
	cmd.Stderr = os.Stderr

	return pngname, cmd.Run()
}
