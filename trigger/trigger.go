// Package trigger validates an inbound pipeline-entry request — a
// principal plus the topic/trigger-type/record tuple it wants to submit —
// before it is handed to the executor as a task.
package trigger

import (
	"strings"

	"github.com/google/uuid"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/value"
)

// Role names one of the three principal roles. Only a superadmin may
// submit on behalf of a tenant other than its own.
type Role string

const (
	RoleConsole    Role = "console"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Principal identifies who is submitting a trigger.
type Principal struct {
	TenantID string
	UserID   string
	Name     string
	Role     Role
}

// Data is the entry-façade request body: which topic, which trigger type,
// the record itself, and an optional tenant override (superadmin only) and
// trace id (auto-generated if absent).
type Data struct {
	Code        string
	TriggerType schema.TriggerType
	Record      value.Value
	TenantID    string
	TraceID     string
}

// Validated is a Data that has passed Validate, resolved against its
// effective tenant and carrying a guaranteed-present trace id.
type Validated struct {
	Principal Principal
	Data      Data
}

var supportedTriggers = map[schema.TriggerType]bool{
	schema.TriggerInsert:        true,
	schema.TriggerMerge:         true,
	schema.TriggerInsertOrMerge: true,
	schema.TriggerDelete:        true,
}

// insertOnlyKinds are the topic kinds that accept insert alone: raw topics
// are append-only ingestion points, and synonym topics are a virtual view
// with no storage of their own to merge or delete against.
var insertOnlyKinds = map[schema.TopicKind]bool{
	schema.TopicKindRaw:     true,
	schema.TopicKindSynonym: true,
}

// newTraceID is overridable in tests; production wiring leaves it as
// uuid.NewString.
var newTraceID = uuid.NewString

// Validate checks principal/tenant/topic/trigger consistency and returns a
// Validated request with its trace id filled in. Every failure is
// collected and returned together as a single pipeflowerr.Multiple, except
// topic-kind checks that require the resolved Topic (callers that have
// already looked the topic up call CheckTopicKind for those).
func Validate(p Principal, d Data) (Validated, error) {
	var errs []error

	if strings.TrimSpace(d.Code) == "" {
		errs = append(errs, pipeflowerr.New(pipeflowerr.CodeTriggerValidation, "trigger_data.code is required"))
	}
	if d.TriggerType == "" {
		errs = append(errs, pipeflowerr.New(pipeflowerr.CodeTriggerValidation, "trigger_data.trigger_type is required"))
	} else if !supportedTriggers[d.TriggerType] {
		errs = append(errs, pipeflowerr.Newf(pipeflowerr.CodeTriggerValidation, "trigger_data.trigger_type %q is not recognized", d.TriggerType))
	}
	if d.Record.IsNone() {
		errs = append(errs, pipeflowerr.New(pipeflowerr.CodeTriggerValidation, "trigger_data.data is required"))
	}

	effectiveTenant := d.TenantID
	if p.Role == RoleSuperAdmin {
		if strings.TrimSpace(d.TenantID) == "" {
			errs = append(errs, pipeflowerr.New(pipeflowerr.CodeTriggerValidation, "trigger_data.tenant_id is required for a superadmin principal"))
		}
	} else {
		if d.TenantID != "" && d.TenantID != p.TenantID {
			errs = append(errs, pipeflowerr.Newf(pipeflowerr.CodeTriggerValidation, "trigger_data.tenant_id %q does not match principal tenant %q", d.TenantID, p.TenantID))
		}
		effectiveTenant = p.TenantID
	}

	if err := pipeflowerr.Multiple(errs...); err != nil {
		return Validated{}, err
	}

	traceID := d.TraceID
	if traceID == "" {
		traceID = newTraceID()
	}
	d.TenantID = effectiveTenant
	d.TraceID = traceID
	return Validated{Principal: p, Data: d}, nil
}

// CheckTopicKind rejects a trigger type a topic's kind does not support:
// raw and synonym topics accept insert alone. Called once the target
// topic has been resolved from the catalog.
func CheckTopicKind(kind schema.TopicKind, trigger schema.TriggerType) error {
	if insertOnlyKinds[kind] && trigger != schema.TriggerInsert {
		return pipeflowerr.Newf(pipeflowerr.CodeTriggerTypeNotSupported,
			"trigger type %q is not supported on a %s topic", trigger, kind)
	}
	return nil
}
