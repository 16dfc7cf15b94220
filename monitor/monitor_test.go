package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/value"
)

func TestPipelineBuilderAssemblesTree(t *testing.T) {
	pb := NewPipelineBuilder("trace-1", "p1", "tenant-a")
	pb.SetPrerequisite(&Prerequisite{Result: true, Definition: "f1 > 100"})

	ub := NewUnitBuilder("u1")
	action := StartAction("a1", "alarm")
	FinishAction(action, StatusDone, map[string]value.Value{"message": value.String("too high")}, nil)
	ub.AddIteration([]*ActionLog{action})
	unitLog := ub.Finish(StatusDone)

	sb := NewStageBuilder("s1")
	sb.AddUnit(unitLog)
	stageLog := sb.Finish(StatusDone)

	pb.AddStage(stageLog)
	pipelineLog := pb.Finish(StatusDone)

	assert.Equal(t, "trace-1", pipelineLog.TraceID)
	assert.Equal(t, StatusDone, pipelineLog.Status)
	require.Len(t, pipelineLog.Stages, 1)
	require.Len(t, pipelineLog.Stages[0].Units, 1)
	require.Len(t, pipelineLog.Stages[0].Units[0].Iterations, 1)
	require.Len(t, pipelineLog.Stages[0].Units[0].Iterations[0], 1)
	assert.Equal(t, StatusDone, pipelineLog.Stages[0].Units[0].Iterations[0][0].Status)
	assert.True(t, pipelineLog.Prerequisite.Result)
}

func TestFinishActionRecordsError(t *testing.T) {
	action := StartAction("a1", "writeFactor")
	err := errors.New("divide by zero")
	FinishAction(action, StatusError, nil, err)

	assert.Equal(t, StatusError, action.Status)
	assert.Equal(t, err, action.Err)
}

func TestGatedUnitHasNoIterations(t *testing.T) {
	ub := NewUnitBuilder("u1")
	ub.SetPrerequisite(&Prerequisite{Result: false, Definition: "f1 empty"})
	unitLog := ub.Finish(StatusIgnored)

	assert.Equal(t, StatusIgnored, unitLog.Status)
	assert.Empty(t, unitLog.Iterations)
	assert.False(t, unitLog.Prerequisite.Result)
}

type fakeSink struct {
	saved []*PipelineLog
}

func (f *fakeSink) Save(ctx context.Context, log *PipelineLog) error {
	f.saved = append(f.saved, log)
	return nil
}

func TestSinkSavesExactlyOnceRegardlessOfOutcome(t *testing.T) {
	sink := &fakeSink{}

	gated := NewPipelineBuilder("trace-2", "p1", "tenant-a").
		SetPrerequisite(&Prerequisite{Result: false, Definition: "f1 empty"}).
		Finish(StatusIgnored)
	require.NoError(t, sink.Save(context.Background(), gated))

	require.Len(t, sink.saved, 1)
	assert.Equal(t, StatusIgnored, sink.saved[0].Status)
}
