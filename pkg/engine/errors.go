// Package engine executes validated circuits: it resolves node behavior
// through a host-supplied registry, schedules nodes concurrently as their
// dependencies reach terminal states, prunes conditional branches, isolates
// failures to dependent subgraphs, and assembles the per-node run outcome.
package engine

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of an error for reporting and
// isolation logic.
type ErrorClass string

const (
	// ErrorClassValidation indicates the circuit itself is malformed.
	// Surfaced before any execution; the run never starts.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassNode indicates a specific node's execution returned an
	// error result. Local to that node; transitive dependents are skipped.
	ErrorClassNode ErrorClass = "node"

	// ErrorClassSystem indicates host or environment trouble rather than bad
	// user input. Examples: unknown node kind, node timeout, step-ledger
	// inconsistency. Treated as a node-level error for isolation but logged
	// distinctly.
	ErrorClassSystem ErrorClass = "system"
)

// Error codes for programmatic handling.
const (
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeUnknownKind      = "ERR_UNKNOWN_KIND"
	ErrCodeTimeout          = "ERR_TIMEOUT"
	ErrCodePanic            = "ERR_PANIC"
	ErrCodeLedger           = "ERR_LEDGER"
	ErrCodeDependencyFailed = "ERR_DEPENDENCY_FAILED"
	ErrCodeMissingInput     = "ERR_MISSING_INPUT"
	ErrCodeCancelled        = "ERR_CANCELLED"
)

// EngineError represents a classified error with context.
type EngineError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Node is the node id the error is attributed to, if applicable.
	Node string `json:"node,omitempty"`

	// Details contains additional context-specific information.
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	if e.Node != "" {
		return fmt.Sprintf("[%s] %s (node=%s)", e.Class, msg, e.Node)
	}
	return fmt.Sprintf("[%s] %s", e.Class, msg)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// WithCode sets the error code and returns the error for chaining.
func (e *EngineError) WithCode(code string) *EngineError {
	e.Code = code
	return e
}

// WithNode attributes the error to a node and returns it for chaining.
func (e *EngineError) WithNode(nodeID string) *EngineError {
	e.Node = nodeID
	return e
}

// WithDetail adds a detail field to the error context.
func (e *EngineError) WithDetail(key string, value any) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a new validation-class error.
func NewValidationError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassValidation,
		Code:    ErrCodeValidation,
		Message: message,
		Err:     err,
	}
}

// NewNodeError creates a new node-class error.
func NewNodeError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassNode,
		Message: message,
		Err:     err,
	}
}

// NewSystemError creates a new system-class error.
func NewSystemError(message string, err error) *EngineError {
	return &EngineError{
		Class:   ErrorClassSystem,
		Message: message,
		Err:     err,
	}
}

// IsSystemError returns true if the error is classified as a system error.
func IsSystemError(err error) bool {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Class == ErrorClassSystem
	}
	return false
}

// ClassOf returns the classification of an error, defaulting unclassified
// errors to the node class.
func ClassOf(err error) ErrorClass {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Class
	}
	return ErrorClassNode
}
