package action

import (
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/value"
)

func runCopyToMemory(ca *compiler.CompiledAction, frame *memview.Frame) (*Result, error) {
	v, err := ca.Parameter.ValueFrom(frame)
	if err != nil {
		return nil, err
	}
	frame.SetVariable(ca.Variable, v)
	return &Result{Touched: map[string]value.Value{ca.Variable: v}}, nil
}
