// Package executor drives a single inbound trigger through its full
// cascade: round 0 runs the pipelines bound to the inbound topic, and any
// write-style action produces follow-up tasks the executor enqueues into
// round N+1. The loop drains every round in order before reporting back a
// completed monitor-log forest.
package executor

import (
	"context"
	"sync"

	"github.com/evalgo-labs/pipeflow/action"
	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/funcs"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/monitor"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// Task is one pending (pipeline-bound topic, record) pair. One task
// resolves to zero or more pipeline runs (every pipeline bound to TopicID
// for Trigger), each of which may itself enqueue tasks for the next round.
type Task struct {
	TenantID  string
	TopicID   string
	Trigger   schema.TriggerType
	Record    value.Value
	Principal string
	TraceID   string
	Async     bool
}

// RoundAnnouncer is an optional side channel notified once a round has
// fully drained, independent of Sink; Deps.Announcer may be left nil.
type RoundAnnouncer interface {
	AnnounceRound(ctx context.Context, traceID string, round int) error
}

// Deps bundles everything a round needs beyond the task itself.
type Deps struct {
	Catalog    schema.Catalog
	Compiler   *compiler.Compiler
	ActionDeps action.Deps
	Sink       monitor.Sink
	Env        *funcs.Env
	Announcer  RoundAnnouncer
}

// Context owns the rounds of tasks a single inbound trigger's cascade
// produces. Tasks within a round are independent; a task may only add
// tasks to the next round, never its own.
type Context struct {
	deps   Deps
	rounds [][]Task
	mu     sync.Mutex
}

// NewContext seeds round 0 with the inbound task.
func NewContext(deps Deps, first Task) *Context {
	return &Context{deps: deps, rounds: [][]Task{{first}}}
}

func (c *Context) enqueue(round int, t Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.rounds) <= round {
		c.rounds = append(c.rounds, nil)
	}
	c.rounds[round] = append(c.rounds[round], t)
}

// Run drains every round in FIFO order, never starting round N+1 before
// round N has completed, and returns one monitor.PipelineLog per pipeline
// run across every task. A pipeline run's own error aborts the whole
// cascade (fail-fast), but its log is still handed to the sink first.
func (c *Context) Run(ctx context.Context) ([]*monitor.PipelineLog, error) {
	var logs []*monitor.PipelineLog
	for round := 0; round < len(c.rounds); round++ {
		var done func()
		if log := c.deps.ActionDeps.Log; log != nil && len(c.rounds[round]) > 0 {
			done = common.LogDuration(log.WithFields(map[string]interface{}{
				"trace_id": c.rounds[round][0].TraceID,
				"round":    round,
			}), "round")
		}

		for _, t := range c.rounds[round] {
			taskLogs, err := c.runTask(ctx, round, t)
			logs = append(logs, taskLogs...)
			if err != nil {
				if done != nil {
					done()
				}
				return logs, err
			}
		}

		if done != nil {
			done()
		}

		if c.deps.Announcer != nil && len(c.rounds[round]) > 0 {
			if err := c.deps.Announcer.AnnounceRound(ctx, c.rounds[round][0].TraceID, round); err != nil {
				return logs, err
			}
		}
	}
	return logs, nil
}

func (c *Context) runTask(ctx context.Context, round int, t Task) ([]*monitor.PipelineLog, error) {
	pipelines, err := c.deps.Catalog.PipelinesBoundTo(t.TenantID, t.TopicID, t.Trigger)
	if err != nil {
		return nil, err
	}

	var logs []*monitor.PipelineLog
	for _, p := range pipelines {
		actionDeps := c.deps.ActionDeps
		if log := c.deps.ActionDeps.Log; log != nil {
			actionDeps.Log = log.WithFields(map[string]interface{}{
				"trace_id":    t.TraceID,
				"topic_id":    t.TopicID,
				"pipeline_id": p.ID,
			})
		}

		var compiled *compiler.CompiledPipeline
		var plog *monitor.PipelineLog
		var followUps []action.FollowUp
		var runErr error

		compileAndRun := func() error {
			var compileErr error
			compiled, compileErr = c.deps.Compiler.Compile(t.TenantID, p)
			if compileErr != nil {
				return compileErr
			}
			current := t.Record
			frame := memview.NewFrame(&current, nil, c.deps.Env)
			plog, followUps, runErr = runPipeline(ctx, compiled, frame, actionDeps, t.TraceID)
			return runErr
		}

		var err error
		if actionDeps.Log != nil {
			err = common.LogOperation(actionDeps.Log, "run pipeline", compileAndRun)
		} else {
			err = compileAndRun()
		}
		if compiled == nil {
			return logs, err
		}

		if c.deps.Sink != nil {
			if saveErr := c.deps.Sink.Save(ctx, plog); saveErr != nil {
				return append(logs, plog), saveErr
			}
		}
		logs = append(logs, plog)

		if runErr != nil {
			return logs, runErr
		}

		for _, fu := range followUps {
			c.enqueue(round+1, Task{
				TenantID:  t.TenantID,
				TopicID:   fu.TopicID,
				Trigger:   fu.Trigger,
				Record:    fu.Record,
				Principal: t.Principal,
				TraceID:   t.TraceID,
				Async:     t.Async,
			})
		}
	}
	return logs, nil
}
