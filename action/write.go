package action

import (
	"context"

	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

func runInsertRow(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	record, err := materialize(ca.Mapping, ca.TargetTopic, frame, deps)
	if err != nil {
		return nil, err
	}
	inserted, err := deps.Storage.Insert(ctx, ca.TargetTopic, record)
	if err != nil {
		return nil, err
	}
	return &Result{
		Touched:   map[string]value.Value{"record": inserted},
		FollowUps: []FollowUp{{TopicID: ca.TargetTopic.ID, Trigger: schema.TriggerInsert, Record: inserted}},
	}, nil
}

func runMergeRow(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	record, err := materialize(ca.Mapping, ca.TargetTopic, frame, deps)
	if err != nil {
		return nil, err
	}
	_, current, err := deps.Storage.Merge(ctx, ca.TargetTopic, record)
	if err != nil {
		return nil, err
	}
	return &Result{
		Touched:   map[string]value.Value{"record": current},
		FollowUps: []FollowUp{{TopicID: ca.TargetTopic.ID, Trigger: schema.TriggerMerge, Record: current}},
	}, nil
}

func runInsertOrMergeRow(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	record, err := materialize(ca.Mapping, ca.TargetTopic, frame, deps)
	if err != nil {
		return nil, err
	}
	_, current, err := deps.Storage.InsertOrMerge(ctx, ca.TargetTopic, record)
	if err != nil {
		return nil, err
	}
	return &Result{
		Touched:   map[string]value.Value{"record": current},
		FollowUps: []FollowUp{{TopicID: ca.TargetTopic.ID, Trigger: schema.TriggerInsertOrMerge, Record: current}},
	}, nil
}

// runWriteFactor behaves as a merge restricted to the mapped factor(s): it
// materializes just those fields and merges them onto the matching row.
func runWriteFactor(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	record, err := materialize(ca.Mapping, ca.TargetTopic, frame, deps)
	if err != nil {
		return nil, err
	}
	_, current, err := deps.Storage.Merge(ctx, ca.TargetTopic, record)
	if err != nil {
		return nil, err
	}
	return &Result{
		Touched:   map[string]value.Value{"record": current},
		FollowUps: []FollowUp{{TopicID: ca.TargetTopic.ID, Trigger: schema.TriggerMerge, Record: current}},
	}, nil
}
