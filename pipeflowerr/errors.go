// Package pipeflowerr defines the external-facing error envelope: {code,
// details} with a short module prefix per subsystem (VALE-, PATH-, FUNC-,
// PARM-, COND-, CMPL-, ACTN-, EXEC-, TRIG-, INFR-). Domain packages construct
// errors with New or Wrap so every error that crosses a package boundary
// carries a code.
package pipeflowerr

import (
	"errors"
	"fmt"
	"strings"
)

// Well-known codes referenced by name across packages. Each module also
// mints its own NNNNN suffixes per call site; these constants cover the
// handful named explicitly elsewhere.
const (
	CodeValuesNotComparable           = "VALE-00001"
	CodeVariableFuncNotSupported      = "FUNC-00001"
	CodeIncorrectDataPath             = "PATH-00001"
	CodeComputeParameterValueNotOK    = "PARM-00001"
	CodeComputeParameterNotADate      = "PARM-00002"
	CodeComputeParameterDivideZero    = "PARM-00003"
	CodeComputeParameterModulusZero   = "PARM-00004"
	CodeFactorNotFound                = "CMPL-00001"
	CodeBlankVariableName             = "CMPL-00002"
	CodeMissingRequiredParameter      = "CMPL-00003"
	CodeDoubleDefault                 = "CMPL-00004"
	CodeUnknownFunction               = "FUNC-00002"
	CodeParseError                    = "VALE-00002"
	CodeTriggerValidation             = "TRIG-00001"
	CodeTriggerTypeNotSupported       = "TRIG-00002"
	CodeActionFailed                  = "ACTN-00001"
	CodeMultiple                      = "Multiple"
	CodeLoopVariableNotVec            = "EXEC-00001"
	CodeInfrastructure                = "INFR-00001"
	CodeExternalNotFound              = "ACTN-00002"
	CodeExternalCallFailed            = "ACTN-00003"
	CodeTopicNotFound                 = "TRIG-00003"
	CodeEncryptionNotConfigured       = "ACTN-00004"
)

// Error is the external-facing envelope: {code, details}.
type Error struct {
	Code    string
	Details string
	Sub     []error
	wrapped error
}

func (e *Error) Error() string {
	if len(e.Sub) > 0 {
		parts := make([]string, len(e.Sub))
		for i, s := range e.Sub {
			parts[i] = s.Error()
		}
		return fmt.Sprintf("%s: %s [%s]", e.Code, e.Details, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Details)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New constructs a coded error.
func New(code, details string) *Error {
	return &Error{Code: code, Details: details}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Details: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying error, preserving it for errors.Is/As.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Details: err.Error(), wrapped: err}
}

// Multiple aggregates independent validation failures into a single
// composite error with code "Multiple", used by multi-check validators
// that want to report every failure in one response.
func Multiple(errs ...error) error {
	var collected []error
	for _, e := range errs {
		if e != nil {
			collected = append(collected, e)
		}
	}
	if len(collected) == 0 {
		return nil
	}
	if len(collected) == 1 {
		return collected[0]
	}
	return &Error{Code: CodeMultiple, Details: "multiple errors occurred", Sub: collected}
}

// CodeOf extracts the code from an error if it (or something it wraps) is a
// *Error; returns "" otherwise.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
