package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
)

// externalError is the {code, details} envelope every boundary error is
// rendered as.
type externalError struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

var requestLog = common.ServiceLogger("pipeflow", "")

// writeError logs the failing request with structured fields and responds
// with the external error envelope, preserving the request id so a trace
// can be followed from the client's perspective.
func writeError(c echo.Context, status int, err error) error {
	code := pipeflowerr.CodeOf(err)
	if code == "" {
		code = pipeflowerr.CodeInfrastructure
	}

	requestLog.WithFields(map[string]interface{}{
		"path":      c.Request().URL.Path,
		"method":    c.Request().Method,
		"requestId": c.Response().Header().Get(echo.HeaderXRequestID),
		"status":    status,
		"code":      code,
	}).Error(err.Error())

	return c.JSON(status, externalError{Code: code, Details: err.Error()})
}
