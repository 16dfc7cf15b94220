package action

import (
	"context"

	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/value"
)

func runReadRow(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	row, found, err := deps.Storage.ReadRow(ctx, ca.SourceTopic, ca.Criteria)
	if err != nil {
		return nil, err
	}
	if !found {
		row = value.None
	}
	frame.SetVariable(ca.Variable, row)
	return &Result{Touched: map[string]value.Value{ca.Variable: row}}, nil
}

func runExists(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	found, err := deps.Storage.Exists(ctx, ca.SourceTopic, ca.Criteria)
	if err != nil {
		return nil, err
	}
	v := value.Bool(found)
	frame.SetVariable(ca.Variable, v)
	return &Result{Touched: map[string]value.Value{ca.Variable: v}}, nil
}

func runReadRows(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	rows, err := deps.Storage.ReadRows(ctx, ca.SourceTopic, ca.Criteria)
	if err != nil {
		return nil, err
	}
	v := value.Vec(rows)
	frame.SetVariable(ca.Variable, v)
	return &Result{Touched: map[string]value.Value{ca.Variable: v}}, nil
}

func runReadFactor(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	v, found, err := deps.Storage.ReadFactor(ctx, ca.SourceTopic, ca.FactorID, ca.Criteria)
	if err != nil {
		return nil, err
	}
	if !found {
		v = value.None
	}
	frame.SetVariable(ca.Variable, v)
	return &Result{Touched: map[string]value.Value{ca.Variable: v}}, nil
}

func runReadFactors(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	var all []value.Value
	for _, factorID := range ca.FactorIDs {
		vs, err := deps.Storage.ReadFactors(ctx, ca.SourceTopic, factorID, ca.Criteria)
		if err != nil {
			return nil, err
		}
		all = append(all, vs...)
	}
	v := value.Vec(all)
	frame.SetVariable(ca.Variable, v)
	return &Result{Touched: map[string]value.Value{ca.Variable: v}}, nil
}
