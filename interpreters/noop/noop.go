package noop

import (
	"context"
	"log"

	"github.com/Comcast/rove/core"
)

// Interpreter is a guard interpreter that allows everything.  Useful
// for rendering and analysis tools that need to compile a plan but
// never evaluate it.
type Interpreter struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) CompileGuard(ctx context.Context, code interface{}) (core.Guard, error) {
	if !i.Silent {
		log.Printf("warning: using noop interpreter for guard compilation")
	}
	return core.GuardFunc(func(ctx context.Context, named map[string]interface{}) (bool, error) {
		return true, nil
	}), nil
}
