// Package monitor builds the per-execution log tree a pipeline run
// produces: pipeline → stage → unit → action, each node carrying status,
// timing, and (where applicable) the prerequisite that gated it. The tree
// is handed to a Sink at the end of a task regardless of whether the
// pipeline succeeded, failed, or was gated out entirely.
package monitor

import (
	"context"
	"time"

	"github.com/evalgo-labs/pipeflow/value"
)

// Status is the terminal state of one log node.
type Status string

const (
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusIgnored Status = "ignored"
)

// Prerequisite records a guard's evaluated result alongside a rendering of
// the condition that produced it, for display without re-evaluating.
type Prerequisite struct {
	Result     bool
	Definition string
}

// ActionLog is the leaf node: one action's outcome plus whatever values it
// touched (read, wrote, or rendered).
type ActionLog struct {
	ActionID      string
	Kind          string
	Status        Status
	StartedAt     time.Time
	ElapsedMillis int64
	Prerequisite  *Prerequisite // alarm actions only
	Touched       map[string]value.Value
	Err           error
}

// UnitLog is one unit's outcome: its own guard result plus every action it
// ran (or none, if gated out or looped over an empty vec).
type UnitLog struct {
	UnitID        string
	Status        Status
	StartedAt     time.Time
	ElapsedMillis int64
	Prerequisite  *Prerequisite
	Iterations    [][]*ActionLog // one slice per loop iteration; len 1 when the unit does not loop
}

// StageLog is one stage's outcome: its guard result plus every unit.
type StageLog struct {
	StageID       string
	Status        Status
	StartedAt     time.Time
	ElapsedMillis int64
	Prerequisite  *Prerequisite
	Units         []*UnitLog
}

// PipelineLog is the root of one pipeline execution's log tree.
type PipelineLog struct {
	TraceID       string
	PipelineID    string
	TenantID      string
	Status        Status
	StartedAt     time.Time
	ElapsedMillis int64
	Prerequisite  *Prerequisite
	Stages        []*StageLog
}

// Sink persists a finished pipeline log tree. The reference storage
// adapter writes it as a row; a test double can simply collect them.
type Sink interface {
	Save(ctx context.Context, log *PipelineLog) error
}
