// A simple, single-plan process that reads from stdin and writes to
// stdout.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/Comcast/rove/core"
	"github.com/Comcast/rove/interpreters"
	"github.com/Comcast/rove/interpreters/goja"
	"github.com/Comcast/rove/plan"
	"github.com/Comcast/rove/util"
)

func main() {

	var (
		planFilename     = flag.String("p", "", "plan filename (YAML); empty means stdin")
		startingBindings = flag.String("b", "{}", "starting bindings by node name (in JSON)")

		validOnly = flag.Bool("valid-only", false, "only emit valid results")
		reading   = flag.Bool("I", false, "read more bindings (as JSON lines) from stdin")
		diag      = flag.Bool("d", false, "print diagnostics")

		libDir = flag.String("i", ".", "directory for goja guard libraries")
	)

	flag.Parse()

	util.Logging = *diag

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	is := interpreters.Standard()
	gi := goja.NewInterpreter()
	gi.LibraryProvider = goja.MakeFileLibraryProvider(*libDir)
	is["goja"] = gi
	is["ecmascript"] = gi

	guardInterpreters := make(map[string]plan.GuardInterpreter, len(is))
	for name, i := range is {
		guardInterpreters[name] = i
	}

	var bs []byte
	var err error
	if *planFilename == "" {
		if *reading {
			panic("can't read both the plan and bindings from stdin (-I needs -p)")
		}
		if bs, err = ioutil.ReadAll(os.Stdin); err != nil {
			panic(err)
		}
	} else {
		if bs, err = ioutil.ReadFile(*planFilename); err != nil {
			panic(err)
		}
	}

	p, err := plan.Parse(bs)
	if err != nil {
		panic(err)
	}

	c, err := p.Compile(ctx, plan.BaseFactories(), guardInterpreters)
	if err != nil {
		panic(err)
	}

	var named map[string]interface{}
	if err = json.Unmarshal([]byte(*startingBindings), &named); err != nil {
		panic(err)
	}

	// eval runs the plan once with the given name-keyed bindings
	// and writes one JSON line per result.
	eval := func(named map[string]interface{}) error {
		bs := core.NewBindings()
		for name, x := range named {
			n, have := c.Nodes[name]
			if !have {
				return fmt.Errorf("no node '%s' to bind", name)
			}
			bs = bs.Extend(n.Id(), x)
		}

		util.Logf("evaluating '%s' with %d bindings", p.Root, len(bs))

		rs := c.Root.Evaluate(ctx, bs)
		for {
			r, err := rs.Next()
			if err != nil {
				return err
			}
			if r == nil {
				return nil
			}
			if *validOnly && !r.Valid {
				continue
			}

			out := map[string]interface{}{
				"bindings": r.Bs.Named(c.Root),
				"valid":    r.Valid,
			}
			js, err := json.Marshal(&out)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", js)
		}
	}

	if err = eval(named); err != nil {
		panic(err)
	}

	if !*reading {
		return
	}

	// Each stdin line is a map of node names to values, merged
	// into the starting bindings for another evaluation.
	in := bufio.NewReader(os.Stdin)
	for {
		line, err := in.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			panic(err)
		}
		if len(line) <= 1 {
			continue
		}

		var more map[string]interface{}
		if err = json.Unmarshal(line, &more); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v on %s", err, line)
			continue
		}

		merged := make(map[string]interface{}, len(named)+len(more))
		for name, x := range named {
			merged[name] = x
		}
		for name, x := range more {
			merged[name] = x
		}

		if err = eval(merged); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
