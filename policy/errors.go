package policy

import (
	"fmt"
)

// Error types for policy operations
type (
	// CompilationError indicates a policy expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a policy could not be evaluated against a session
	EvaluationError struct {
		Expression string
		SessionID  string
		Err        error
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for policy '%s' on session '%s': %v", e.Expression, e.SessionID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
