package action

import (
	"context"

	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// runDeleteRow resolves the single row matching the criteria, then
// delegates its removal to storage; a miss is a no-op, not an error.
func runDeleteRow(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	row, found, err := deps.Storage.ReadRow(ctx, ca.SourceTopic, ca.Criteria)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{Touched: map[string]value.Value{"deleted": value.None}}, nil
	}
	previous, err := deps.Storage.Delete(ctx, ca.SourceTopic, row)
	if err != nil {
		return nil, err
	}
	return &Result{
		Touched:   map[string]value.Value{"deleted": previous},
		FollowUps: []FollowUp{{TopicID: ca.SourceTopic.ID, Trigger: schema.TriggerDelete, Record: previous}},
	}, nil
}

// runDeleteRows resolves every row matching the criteria and deletes each
// in turn, producing one follow-up task per deleted row.
func runDeleteRows(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	rows, err := deps.Storage.ReadRows(ctx, ca.SourceTopic, ca.Criteria)
	if err != nil {
		return nil, err
	}

	deleted := make([]value.Value, 0, len(rows))
	followUps := make([]FollowUp, 0, len(rows))
	for _, row := range rows {
		previous, err := deps.Storage.Delete(ctx, ca.SourceTopic, row)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, previous)
		followUps = append(followUps, FollowUp{TopicID: ca.SourceTopic.ID, Trigger: schema.TriggerDelete, Record: previous})
	}

	return &Result{
		Touched:   map[string]value.Value{"deleted": value.Vec(deleted)},
		FollowUps: followUps,
	}, nil
}
