package domain

import (
	"errors"
	"fmt"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAssessmentNotReady  = errors.New("assessment not ready")
	ErrInvalidTransition   = errors.New("invalid lifecycle transition")
)

// ValidationError rejects a malformed submission before any analysis starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

type ToolErrorKind string

const (
	ToolErrTimeout      ToolErrorKind = "timeout"
	ToolErrUnavailable  ToolErrorKind = "unavailable"
	ToolErrInvalidInput ToolErrorKind = "invalid_input"
)

// ToolError is a per-source failure. It is always absorbed into an unknown
// finding and never aborts the analysis run.
type ToolError struct {
	Source string
	Kind   ToolErrorKind
	Err    error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s %s: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("source %s %s", e.Source, e.Kind)
}

func (e *ToolError) Unwrap() error { return e.Err }

func NewToolError(source string, kind ToolErrorKind, err error) *ToolError {
	return &ToolError{Source: source, Kind: kind, Err: err}
}

// ToolErrorIs reports whether err is a ToolError of the given kind.
func ToolErrorIs(err error, kind ToolErrorKind) bool {
	var te *ToolError
	return errors.As(err, &te) && te.Kind == kind
}
