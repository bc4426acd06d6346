package pipeline

import (
	"errors"
	"fmt"
)

// StepError carries the identity of the failing step alongside the cause,
// so the run diagnostic can name the stage. The domain taxonomy
// (DataFormatError, SchemaError, FitError, ...) stays reachable through
// Unwrap.
type StepError struct {
	Step    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("step %s: %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("step %s: %s", e.Step, e.Message)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewStepError creates a step failure with the given cause.
func NewStepError(step, message string, cause error) *StepError {
	return &StepError{Step: step, Message: message, Cause: cause}
}

// WrapStepError attributes an error to a step. An error that already
// names a step keeps its attribution.
func WrapStepError(err error, step, message string) error {
	if err == nil {
		return nil
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return err
	}
	return &StepError{Step: step, Message: message, Cause: err}
}

// FailingStep returns the step a run error is attributed to, or "" when
// the error carries no step identity.
func FailingStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}
