package monitor

import (
	"time"

	"github.com/evalgo-labs/pipeflow/value"
)

// PipelineBuilder accumulates one pipeline execution's log tree. Start it
// once per task, append stage results as they complete, and call Finish to
// stamp the terminal status and elapsed time.
type PipelineBuilder struct {
	log   *PipelineLog
	start time.Time
}

// NewPipelineBuilder starts timing a new pipeline execution.
func NewPipelineBuilder(traceID, pipelineID, tenantID string) *PipelineBuilder {
	now := time.Now()
	return &PipelineBuilder{
		log: &PipelineLog{
			TraceID:    traceID,
			PipelineID: pipelineID,
			TenantID:   tenantID,
			StartedAt:  now,
		},
		start: now,
	}
}

// SetPrerequisite records the pipeline guard's result, if any.
func (b *PipelineBuilder) SetPrerequisite(p *Prerequisite) *PipelineBuilder {
	b.log.Prerequisite = p
	return b
}

// AddStage appends one completed stage's log node.
func (b *PipelineBuilder) AddStage(s *StageLog) *PipelineBuilder {
	b.log.Stages = append(b.log.Stages, s)
	return b
}

// Finish stamps status and elapsed time and returns the completed tree.
// Call it exactly once, whether the pipeline succeeded, failed, or was
// gated out by its own guard — the log is saved in every case.
func (b *PipelineBuilder) Finish(status Status) *PipelineLog {
	b.log.Status = status
	b.log.ElapsedMillis = time.Since(b.start).Milliseconds()
	return b.log
}

// StageBuilder accumulates one stage's log node.
type StageBuilder struct {
	log   *StageLog
	start time.Time
}

func NewStageBuilder(stageID string) *StageBuilder {
	now := time.Now()
	return &StageBuilder{log: &StageLog{StageID: stageID, StartedAt: now}, start: now}
}

func (b *StageBuilder) SetPrerequisite(p *Prerequisite) *StageBuilder {
	b.log.Prerequisite = p
	return b
}

func (b *StageBuilder) AddUnit(u *UnitLog) *StageBuilder {
	b.log.Units = append(b.log.Units, u)
	return b
}

func (b *StageBuilder) Finish(status Status) *StageLog {
	b.log.Status = status
	b.log.ElapsedMillis = time.Since(b.start).Milliseconds()
	return b.log
}

// UnitBuilder accumulates one unit's log node across its loop iterations
// (a unit without a loop has exactly one iteration).
type UnitBuilder struct {
	log   *UnitLog
	start time.Time
}

func NewUnitBuilder(unitID string) *UnitBuilder {
	now := time.Now()
	return &UnitBuilder{log: &UnitLog{UnitID: unitID, StartedAt: now}, start: now}
}

func (b *UnitBuilder) SetPrerequisite(p *Prerequisite) *UnitBuilder {
	b.log.Prerequisite = p
	return b
}

// AddIteration appends one loop iteration's action logs, in source order.
func (b *UnitBuilder) AddIteration(actions []*ActionLog) *UnitBuilder {
	b.log.Iterations = append(b.log.Iterations, actions)
	return b
}

func (b *UnitBuilder) Finish(status Status) *UnitLog {
	b.log.Status = status
	b.log.ElapsedMillis = time.Since(b.start).Milliseconds()
	return b.log
}

// StartAction begins timing one action; callers finish it with
// FinishAction once the action runner has produced a result.
func StartAction(actionID, kind string) *ActionLog {
	return &ActionLog{ActionID: actionID, Kind: kind, StartedAt: time.Now()}
}

// FinishAction stamps status/elapsed/touched/err on an in-flight ActionLog
// and returns it.
func FinishAction(log *ActionLog, status Status, touched map[string]value.Value, err error) *ActionLog {
	log.Status = status
	log.ElapsedMillis = time.Since(log.StartedAt).Milliseconds()
	log.Touched = touched
	log.Err = err
	return log
}
