// Package action runs one compiled action against a memview frame: it
// captures the action-local prerequisite (alarm only), performs the
// action's effect through the storage/alarm/external collaborators, and
// reports the values it touched plus any follow-up tasks a write produced.
// The executor wraps each call with monitor-log timing and status capture.
package action

import (
	"context"
	"encoding/base64"

	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/encrypt"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// Deps bundles the external collaborators an action may need. Encrypt and
// Log are both optional: a nil Encrypt leaves an AES-declared factor
// unencrypted only if the topic never actually carries one (materialize
// errors otherwise), and a nil Log simply skips the per-action trace.
type Deps struct {
	Storage  collab.Storage
	Alarm    collab.AlarmDelivery
	External collab.ExternalCaller
	Encrypt  *encrypt.AESCipher
	Log      *common.ContextLogger
}

// FollowUp names a task the executor should enqueue for the next round: a
// write landed on TopicID under Trigger, carrying Record as its payload.
type FollowUp struct {
	TopicID string
	Trigger schema.TriggerType
	Record  value.Value
}

// Result reports what an action touched and what it produced.
type Result struct {
	// Touched is the evaluated value(s) relevant to this action (the
	// rendered alarm message, the value copied to memory, the rows read,
	// the record written), keyed descriptively for the monitor log.
	Touched map[string]value.Value
	// FollowUps are the tasks a successful write/delete produced.
	FollowUps []FollowUp
	// Skipped is true only for an alarm action whose prerequisite
	// evaluated false; the action performed no effect.
	Skipped bool
}

// Run logs the dispatch (when deps.Log is set, scoped with trace_id/
// pipeline_id/topic_id by the caller) and hands ca to its kind-specific
// runner.
func Run(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	log := deps.Log
	if log != nil {
		log = log.WithField("action_type", string(ca.Kind))
	}

	res, err := dispatch(ctx, ca, frame, deps)

	if log != nil {
		if err != nil {
			log.WithError(err).Error("action failed")
		} else {
			log.Debug("action completed")
		}
	}
	return res, err
}

func dispatch(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	switch ca.Kind {
	case schema.ActionAlarm:
		return runAlarm(ctx, ca, frame, deps)
	case schema.ActionCopyToMemory:
		return runCopyToMemory(ca, frame)
	case schema.ActionWriteToExternal:
		return runWriteToExternal(ctx, ca, frame, deps)
	case schema.ActionReadRow:
		return runReadRow(ctx, ca, frame, deps)
	case schema.ActionExists:
		return runExists(ctx, ca, frame, deps)
	case schema.ActionReadRows:
		return runReadRows(ctx, ca, frame, deps)
	case schema.ActionReadFactor:
		return runReadFactor(ctx, ca, frame, deps)
	case schema.ActionReadFactors:
		return runReadFactors(ctx, ca, frame, deps)
	case schema.ActionInsertRow:
		return runInsertRow(ctx, ca, frame, deps)
	case schema.ActionMergeRow:
		return runMergeRow(ctx, ca, frame, deps)
	case schema.ActionInsertOrMergeRow:
		return runInsertOrMergeRow(ctx, ca, frame, deps)
	case schema.ActionWriteFactor:
		return runWriteFactor(ctx, ca, frame, deps)
	case schema.ActionDeleteRow:
		return runDeleteRow(ctx, ca, frame, deps)
	case schema.ActionDeleteRows:
		return runDeleteRows(ctx, ca, frame, deps)
	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeActionFailed, "unknown action kind %q", ca.Kind)
	}
}

// materialize evaluates a write action's factor mapping into a record
// value, keyed by each factor's dotted name rather than its id. A factor
// declaring EncryptAES is stored as base64-encoded AES-CBC ciphertext
// instead of its plain rendered value.
func materialize(mapping []compiler.CompiledFactorMapping, topic *schema.Topic, frame *memview.Frame, deps Deps) (value.Value, error) {
	fields := make(map[string]value.Value, len(mapping))
	for _, m := range mapping {
		factor, ok := topic.FactorByID(m.FactorID)
		if !ok {
			return value.None, pipeflowerr.Newf(pipeflowerr.CodeFactorNotFound, "factor %q not found on topic %q", m.FactorID, topic.ID)
		}
		v, err := m.Parameter.ValueFrom(frame)
		if err != nil {
			return value.None, err
		}
		if factor.Encrypt == schema.EncryptAES {
			if deps.Encrypt == nil {
				return value.None, pipeflowerr.Newf(pipeflowerr.CodeEncryptionNotConfigured, "factor %q on topic %q requires AES encryption but no cipher is configured", factor.ID, topic.ID)
			}
			ciphertext, err := deps.Encrypt.Encrypt([]byte(v.ToString()))
			if err != nil {
				return value.None, err
			}
			v = value.String(base64.StdEncoding.EncodeToString(ciphertext))
		}
		fields[factor.Name] = v
	}
	return value.Map(fields), nil
}
