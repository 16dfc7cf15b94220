package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evalgo-labs/pipeflow/collab"
	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/executor"
	"github.com/evalgo-labs/pipeflow/idgen"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
	"github.com/evalgo-labs/pipeflow/trigger"
	"github.com/evalgo-labs/pipeflow/value"
)

// triggerRequest is the external entry-point request body: who is
// submitting, what trigger type against what record, and whether the
// caller wants to wait for the cascade to finish.
type triggerRequest struct {
	Principal struct {
		TenantID string `json:"tenantId"`
		UserID   string `json:"userId"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	} `json:"principal"`
	TriggerType string      `json:"triggerType"`
	Data        value.Value `json:"data"`
	TenantID    string      `json:"tenantId"`
	TraceID     string      `json:"traceId"`
	Async       bool        `json:"async"`
}

// triggerResponse is identical whether the cascade ran synchronously or was
// handed off to run in the background.
type triggerResponse struct {
	TopicDataID string `json:"topicDataId"`
}

func triggerHandler(deps Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req triggerRequest
		if err := c.Bind(&req); err != nil {
			return writeError(c, http.StatusBadRequest, pipeflowerr.Wrap(pipeflowerr.CodeTriggerValidation, err))
		}

		principal := trigger.Principal{
			TenantID: req.Principal.TenantID,
			UserID:   req.Principal.UserID,
			Name:     req.Principal.Name,
			Role:     trigger.Role(req.Principal.Role),
		}
		data := trigger.Data{
			Code:        c.Param("code"),
			TriggerType: schema.TriggerType(req.TriggerType),
			Record:      req.Data,
			TenantID:    req.TenantID,
			TraceID:     req.TraceID,
		}

		validated, err := trigger.Validate(principal, data)
		if err != nil {
			return writeError(c, http.StatusBadRequest, err)
		}

		common.NewStructuredLog(nil).WithFields(map[string]interface{}{
			"topic_code": data.Code,
			"tenant_id":  validated.Data.TenantID,
			"trace_id":   validated.Data.TraceID,
			"async":      req.Async,
		}).Log("trigger accepted")

		topic, found, err := deps.Catalog.TopicByCode(validated.Data.TenantID, validated.Data.Code)
		if err != nil {
			return writeError(c, http.StatusInternalServerError, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err))
		}
		if !found {
			return writeError(c, http.StatusNotFound, pipeflowerr.Newf(pipeflowerr.CodeTopicNotFound, "topic %q not found", validated.Data.Code))
		}

		if err := trigger.CheckTopicKind(topic.Kind, validated.Data.TriggerType); err != nil {
			return writeError(c, http.StatusBadRequest, err)
		}

		recordID := idgen.NewRecordID()
		record := stampRecordID(validated.Data.Record, recordID)

		task := executor.Task{
			TenantID:  validated.Data.TenantID,
			TopicID:   topic.ID,
			Trigger:   validated.Data.TriggerType,
			Record:    record,
			Principal: principal.UserID,
			TraceID:   validated.Data.TraceID,
			Async:     req.Async,
		}
		execCtx := executor.NewContext(deps.ExecDeps, task)

		if req.Async {
			go func() {
				bg := context.WithoutCancel(c.Request().Context())
				_, _ = execCtx.Run(bg)
			}()
			return c.JSON(http.StatusAccepted, triggerResponse{TopicDataID: recordID})
		}

		if _, err := execCtx.Run(c.Request().Context()); err != nil {
			return writeError(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusAccepted, triggerResponse{TopicDataID: recordID})
	}
}

// stampRecordID injects the reserved id column a freshly submitted record
// is given before it reaches storage, leaving non-map records untouched.
func stampRecordID(record value.Value, id string) value.Value {
	if record.Kind() != value.KindMap {
		return record
	}
	fields := record.AsMap()
	withID := make(map[string]value.Value, len(fields)+1)
	for k, v := range fields {
		withID[k] = v
	}
	withID[collab.ColumnID] = value.String(id)
	return value.Map(withID)
}
