package action

import (
	"context"

	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/value"
)

func runWriteToExternal(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	payload, err := ca.Payload.ValueFrom(frame)
	if err != nil {
		return nil, err
	}
	if err := deps.External.Call(ctx, ca.ExternalName, payload); err != nil {
		return nil, err
	}
	return &Result{Touched: map[string]value.Value{"payload": payload}}, nil
}
