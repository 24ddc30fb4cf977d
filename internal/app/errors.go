package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports malformed input to selection or orchestration.
// It is a caller bug and is never retried.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (fields: %v)", e.Msg, e.Fields)
}

// ExternalServiceError wraps a transient collaborator failure. The caller
// may retry with backoff; the execution step stays in its pre-failure
// sub-state until retried or explicitly marked failed.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service failure during %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// TerminalStrategyFailure reports that escalation is exhausted at the
// round cap. There is no further automatic action.
type TerminalStrategyFailure struct {
	ExecutionID string
	Round       int
}

func (e *TerminalStrategyFailure) Error() string {
	return fmt.Sprintf("execution %s exhausted escalation at round %d", e.ExecutionID, e.Round)
}

// validateStruct translates validator failures into a ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return &ValidationError{Msg: invalid.Error()}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field()
		}
		return &ValidationError{Msg: "invalid request", Fields: fields}
	}

	return &ValidationError{Msg: err.Error()}
}
