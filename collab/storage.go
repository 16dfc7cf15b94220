// Package collab declares the narrow interfaces the core consumes from
// outside the module: persistent topic-data storage, alarm delivery, and
// external-call dispatch. Concrete adapters satisfy these interfaces:
// storagepg and roundqueue's alarm side live in their own packages, and
// HTTPExternalCaller lives in this package; the core packages depend only
// on the interfaces.
package collab

import (
	"context"

	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// Column name constants every storage adapter must honor, so a
// hand-rolled SQL adapter and an ORM-backed one agree on physical layout.
const (
	ColumnID              = "id_"
	ColumnRawData         = "data_"
	ColumnAggregateAssist = "aggregate_assist_"
	ColumnVersion         = "version_"
	ColumnTenant          = "tenant_id_"
	ColumnInsertTime      = "insert_time_"
	ColumnUpdateTime      = "update_time_"
)

// Storage is the persistent topic-data collaborator: insert/merge/delete a
// row, and read one or many rows (or single/multiple factors of them) by
// compiled joint criteria.
type Storage interface {
	Insert(ctx context.Context, topic *schema.Topic, record value.Value) (value.Value, error)
	InsertOrMerge(ctx context.Context, topic *schema.Topic, record value.Value) (previous *value.Value, current value.Value, err error)
	Merge(ctx context.Context, topic *schema.Topic, record value.Value) (previous value.Value, current value.Value, err error)
	Delete(ctx context.Context, topic *schema.Topic, record value.Value) (previous value.Value, err error)

	ReadRow(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (value.Value, bool, error)
	ReadRows(ctx context.Context, topic *schema.Topic, criteria cond.Condition) ([]value.Value, error)
	ReadFactor(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) (value.Value, bool, error)
	ReadFactors(ctx context.Context, topic *schema.Topic, factorID string, criteria cond.Condition) ([]value.Value, error)
	Exists(ctx context.Context, topic *schema.Topic, criteria cond.Condition) (bool, error)
}

// AlarmSeverity tags the severity an alarm action renders its message at.
type AlarmSeverity string

const (
	AlarmInfo     AlarmSeverity = "info"
	AlarmWarning  AlarmSeverity = "warning"
	AlarmCritical AlarmSeverity = "critical"
)

// AlarmDelivery sends a rendered alarm message at a given severity; the
// actual transport (log, webhook, pager) is the adapter's concern.
type AlarmDelivery interface {
	Send(ctx context.Context, severity AlarmSeverity, message string) error
}

// ExternalCaller dispatches a writeToExternal action's rendered payload to
// a named external collaborator.
type ExternalCaller interface {
	Call(ctx context.Context, name string, payload value.Value) error
}
