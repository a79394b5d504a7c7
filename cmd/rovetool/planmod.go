package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Comcast/rove/plan"
	"github.com/Comcast/rove/tools"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"addFilter": &AddFilterMod{},
	"analyze":   &Analyzer{},
	"graph":     &Grapher{},
	"html":      &HTMLRenderer{},
}

var (
	NoRootNode = errors.New("no root node")
	NodeExists = errors.New("node exists")
)

type Mod interface {
	F(*plan.Plan) error
	Doc() string
	Flags() *flag.FlagSet
}

// AddFilter wraps the plan's root in a new filter node with the given
// guard source and interpreter.
//
// The Plan's Doc is updated to note that this processing has occurred.
func AddFilter(p *plan.Plan, name string, guard interface{}, interpreter string) error {
	if p.Root == "" {
		return NoRootNode
	}
	if _, have := p.Nodes[name]; have {
		return NodeExists
	}

	if p.Nodes == nil {
		p.Nodes = make(map[string]*plan.Def, 32)
	}

	p.Nodes[name] = &plan.Def{
		Kind:        "filter",
		Of:          p.Root,
		Guard:       guard,
		Interpreter: interpreter,
	}
	p.Root = name

	p.Doc = p.Doc + fmt.Sprintf(`

This plan has been processed by AddFilter with guard node "%s".
`, name)

	return nil
}

type AddFilterMod struct {
	Name        string
	GuardSource string
	Interpreter string
}

func (m *AddFilterMod) Doc() string {
	return `
Wraps the plan's root in a filter node with the specified guard source
and interpreter.  The new node becomes the root.
`
}

func (m *AddFilterMod) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("addFilter", flag.PanicOnError)

	flags.StringVar(&m.Name, "n", "guarded", "name for the new filter node")
	flags.StringVar(&m.GuardSource, "g", "return true;", "guard source")
	flags.StringVar(&m.Interpreter, "i", "goja", "guard interpreter")

	return flags
}

func (m *AddFilterMod) F(p *plan.Plan) error {
	return AddFilter(p, m.Name, m.GuardSource, m.Interpreter)
}

type Analyzer struct {
}

func (m *Analyzer) F(p *plan.Plan) error {
	a, err := tools.Analyze(p)
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(&a)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s\n", bs)

	return nil
}

func (m *Analyzer) Doc() string {
	return `
Reports node counts, guards, leaves, orphans, and missing references.
The report goes to stderr; the (unchanged) plan goes to stdout.
`
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.PanicOnError)
}

type Grapher struct {
	OutputFilename string
	Format         string
}

func (m *Grapher) F(p *plan.Plan) error {
	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}

	switch m.Format {
	case "dot":
		return tools.Dot(p, f, "") // Will Close f.
	case "mermaid":
		return tools.Mermaid(p, f, nil) // Will Close f.
	default:
		f.Close()
		return fmt.Errorf(`unknown graph format "%s"`, m.Format)
	}
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz or Mermaid rendering of the plan."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("graph", flag.PanicOnError)
	fs.StringVar(&m.OutputFilename, "o", "plan.dot", "output filename")
	fs.StringVar(&m.Format, "f", "dot", "output format: dot or mermaid")
	return fs
}

type HTMLRenderer struct {
	OutputFilename string
	IncludeGraph   bool
}

func (m *HTMLRenderer) F(p *plan.Plan) error {
	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}
	defer f.Close()

	return tools.RenderPlanPage(p, f, nil, m.IncludeGraph)
}

func (m *HTMLRenderer) Doc() string {
	return "Writes an HTML page documenting the plan."
}

func (m *HTMLRenderer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.PanicOnError)
	fs.StringVar(&m.OutputFilename, "o", "plan.html", "output filename")
	fs.BoolVar(&m.IncludeGraph, "g", true, "include a rendered graph")
	return fs
}
