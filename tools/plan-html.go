package tools

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Comcast/rove/plan"

	md "github.com/russross/blackfriday/v2"
)

// RenderPlanHTML writes an HTML fragment documenting the given plan.
func RenderPlanHTML(p *plan.Plan, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="planDoc doc">%s</div>`, md.Run([]byte(p.Doc)))

	{ // Nodes
		f(`<div class="nodes"><table>`)
		fn := func(name string, def *plan.Def) {
			f(`<tr class="node"><td><span id="%s" class="nodeName">%s</span></td><td>`, name, name)

			f(`<div>kind: <span class="nodeKind">%s</span></div>`, def.Kind)
			if def.Doc != "" {
				f(`<div class="nodeDoc doc">%s</div>`, md.Run([]byte(def.Doc)))
			}
			if def.Type != "" {
				f(`<div>type: <code>%s</code></div>`, def.Type)
			}
			if def.Domain != nil {
				f(`<div>domain: <code>%s</code></div>`, js(def.Domain))
			}
			if def.Value != nil {
				f(`<div>value: <code>%s</code></div>`, js(def.Value))
			}
			if def.Factory != "" {
				f(`<div>factory: <code>%s</code></div>`, def.Factory)
			}
			if src, is := def.Guard.(string); is {
				f(`<div class="code"><pre>%s</pre></div>`, src)
			}

			if edges := Edges(p, name); 0 < len(edges) {
				f(`<div class="edges">`)
				f(`<table>`)
				for _, edge := range edges {
					f(`<tr><td><div class="edgeLabel">%s</div></td>`, edge.Label)
					f(`<td><a href="#%s"><code>%s</code></a></td></tr>`, edge.To, edge.To)
				}
				f(`</table>`)
				f(`</div>`)
			}
			f(`</td></tr>`)
		}
		if def, has := p.Nodes[p.Root]; has {
			fn(p.Root, def)
		}
		for _, name := range nodeNames(p) {
			if name == p.Root {
				continue
			}
			fn(name, p.Nodes[name])
		}
		f(`</table></div>`)
	}

	return nil
}

func js(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		return err.Error()
	}
	return string(bs)
}

// RenderPlanPage writes a complete HTML page documenting the given
// plan.
func RenderPlanPage(p *plan.Plan, out io.Writer, cssFiles []string, includeGraph bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/plan-html.css"}
	}

	bs, err := json.Marshal(p)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, p.Name)

	if includeGraph {
		fmt.Fprintf(out, `
  <script src="https://cdnjs.cloudflare.com/ajax/libs/d3/4.12.2/d3.min.js"></script>
  <script src="https://cdnjs.cloudflare.com/ajax/libs/cytoscape/3.2.8/cytoscape.min.js"></script>
  <script src="/static/plan-html.js"></script>
  <script>
  var thisPlan = %s;
  </script>
`, bs)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, p.Name)

	if includeGraph {
		fmt.Fprintf(out, `<div id="graph"></div>`)
	}

	if err = RenderPlanHTML(p, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderPlanPage reads a plan from a YAML file and renders its
// HTML page.
//
// The file can use '%inline("NAME")' to pull in (say) guard code from
// a sibling file.
func ReadAndRenderPlanPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	p, err := plan.Parse(bs)
	if err != nil {
		return err
	}

	return RenderPlanPage(p, out, cssFiles, includeGraph)
}
