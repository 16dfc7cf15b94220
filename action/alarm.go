package action

import (
	"context"

	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/compiler"
	"github.com/evalgo-labs/pipeflow/encrypt"
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/value"
)

func runAlarm(ctx context.Context, ca *compiler.CompiledAction, frame *memview.Frame, deps Deps) (*Result, error) {
	if ca.Prerequisite != nil {
		ok, err := ca.Prerequisite.IsTrue(frame)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Result{Skipped: true}, nil
		}
	}

	message, err := frame.ValueOf(ca.MessagePath)
	if err != nil {
		return nil, err
	}

	rendered := message.ToString()
	if ca.MaskDigits > 0 {
		masked, err := encrypt.MaskLastChars(rendered, ca.MaskDigits)
		if err != nil {
			return nil, err
		}
		rendered = masked
	}

	severity := collab.AlarmSeverity(ca.Severity)
	if err := deps.Alarm.Send(ctx, severity, rendered); err != nil {
		return nil, err
	}

	return &Result{Touched: map[string]value.Value{"message": value.String(rendered)}}, nil
}
