package executor

import (
	"context"
	"strconv"

	"github.com/evalgo-labs/pipeflow/action"
	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/monitor"
	"github.com/evalgo-labs/pipeflow/path"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// renderGuard produces a human-readable definition of a guard condition
// for the monitor log's Prerequisite, without re-evaluating it.
func renderGuard(c cond.Condition) string {
	switch t := c.(type) {
	case *cond.Expression:
		return string(t.Op)
	case *cond.Joint:
		return string(t.Type)
	default:
		return ""
	}
}

func runPipeline(ctx context.Context, cp *compiler.CompiledPipeline, frame *memview.Frame, deps action.Deps, traceID string) (*monitor.PipelineLog, []action.FollowUp, error) {
	pb := monitor.NewPipelineBuilder(traceID, cp.ID, cp.TenantID)

	if cp.Guard != nil {
		ok, err := cp.Guard.IsTrue(frame)
		if err != nil {
			return pb.Finish(monitor.StatusError), nil, err
		}
		pb.SetPrerequisite(common.Ptr(monitor.Prerequisite{Result: ok, Definition: renderGuard(cp.Guard)}))
		if !ok {
			return pb.Finish(monitor.StatusIgnored), nil, nil
		}
	}

	var followUps []action.FollowUp
	for _, st := range cp.Stages {
		slog, stageFollowUps, err := runStage(ctx, st, frame, deps)
		pb.AddStage(slog)
		followUps = append(followUps, stageFollowUps...)
		if err != nil {
			return pb.Finish(monitor.StatusError), followUps, err
		}
	}
	return pb.Finish(monitor.StatusDone), followUps, nil
}

func runStage(ctx context.Context, cs *compiler.CompiledStage, frame *memview.Frame, deps action.Deps) (*monitor.StageLog, []action.FollowUp, error) {
	sb := monitor.NewStageBuilder(cs.ID)

	if cs.Guard != nil {
		ok, err := cs.Guard.IsTrue(frame)
		if err != nil {
			return sb.Finish(monitor.StatusError), nil, err
		}
		sb.SetPrerequisite(common.Ptr(monitor.Prerequisite{Result: ok, Definition: renderGuard(cs.Guard)}))
		if !ok {
			return sb.Finish(monitor.StatusIgnored), nil, nil
		}
	}

	var followUps []action.FollowUp
	for _, u := range cs.Units {
		ulog, unitFollowUps, err := runUnit(ctx, u, frame, deps)
		sb.AddUnit(ulog)
		followUps = append(followUps, unitFollowUps...)
		if err != nil {
			return sb.Finish(monitor.StatusError), followUps, err
		}
	}
	return sb.Finish(monitor.StatusDone), followUps, nil
}

func runUnit(ctx context.Context, cu *compiler.CompiledUnit, frame *memview.Frame, deps action.Deps) (*monitor.UnitLog, []action.FollowUp, error) {
	ub := monitor.NewUnitBuilder(cu.ID)

	if cu.Guard != nil {
		ok, err := cu.Guard.IsTrue(frame)
		if err != nil {
			return ub.Finish(monitor.StatusError), nil, err
		}
		ub.SetPrerequisite(common.Ptr(monitor.Prerequisite{Result: ok, Definition: renderGuard(cu.Guard)}))
		if !ok {
			return ub.Finish(monitor.StatusIgnored), nil, nil
		}
	}

	if cu.LoopVariable == "" {
		actions, followUps, err := runActions(ctx, cu.Actions, frame, deps)
		ub.AddIteration(actions)
		if err != nil {
			return ub.Finish(monitor.StatusError), followUps, err
		}
		return ub.Finish(monitor.StatusDone), followUps, nil
	}
	return runLoopUnit(ctx, cu, frame, deps, ub)
}

// runLoopUnit iterates a unit once per element of its loop variable's
// current vec value (zero iterations when it's none), rebinding the loop
// variable for the duration of each iteration and restoring its original
// value once the loop completes. Iterations always run sequentially;
// PipelineParallelActionsInLoopUnit is parsed but not consulted here.
func runLoopUnit(ctx context.Context, cu *compiler.CompiledUnit, frame *memview.Frame, deps action.Deps, ub *monitor.UnitBuilder) (*monitor.UnitLog, []action.FollowUp, error) {
	p, err := path.Parse(cu.LoopVariable)
	if err != nil {
		return ub.Finish(monitor.StatusError), nil, err
	}
	v, err := frame.ValueOf(p)
	if err != nil {
		return ub.Finish(monitor.StatusError), nil, err
	}

	switch v.Kind() {
	case value.KindNone:
		return ub.Finish(monitor.StatusDone), nil, nil
	case value.KindVec:
		defer frame.SetVariable(cu.LoopVariable, v)

		var followUps []action.FollowUp
		for _, elem := range v.AsVec() {
			frame.SetVariable(cu.LoopVariable, elem)
			actions, iterFollowUps, err := runActions(ctx, cu.Actions, frame, deps)
			ub.AddIteration(actions)
			followUps = append(followUps, iterFollowUps...)
			if err != nil {
				return ub.Finish(monitor.StatusError), followUps, err
			}
		}
		return ub.Finish(monitor.StatusDone), followUps, nil
	default:
		return ub.Finish(monitor.StatusError), nil, pipeflowerr.Newf(pipeflowerr.CodeLoopVariableNotVec,
			"loop variable %q must be none or vec, got %v", cu.LoopVariable, v.Kind())
	}
}

// runActions runs cu.Actions in source order, stopping at the first error.
// An alarm action's skip/fire outcome is recorded as its own prerequisite.
func runActions(ctx context.Context, actions []*compiler.CompiledAction, frame *memview.Frame, deps action.Deps) ([]*monitor.ActionLog, []action.FollowUp, error) {
	logs := make([]*monitor.ActionLog, 0, len(actions))
	var followUps []action.FollowUp

	for i, ca := range actions {
		alog := monitor.StartAction(strconv.Itoa(i), string(ca.Kind))
		res, err := action.Run(ctx, ca, frame, deps)
		if err != nil {
			logs = append(logs, monitor.FinishAction(alog, monitor.StatusError, nil, err))
			return logs, followUps, err
		}

		status := monitor.StatusDone
		if ca.Kind == schema.ActionAlarm && res.Skipped {
			status = monitor.StatusIgnored
		}
		finished := monitor.FinishAction(alog, status, res.Touched, nil)
		if ca.Kind == schema.ActionAlarm {
			finished.Prerequisite = common.Ptr(monitor.Prerequisite{Result: !res.Skipped})
		}
		logs = append(logs, finished)
		followUps = append(followUps, res.FollowUps...)
	}
	return logs, followUps, nil
}
