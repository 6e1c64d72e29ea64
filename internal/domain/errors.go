package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidData indicates a malformed dataset: missing required columns,
// unparseable dates or numbers. Propagated to the caller, never recovered.
type ErrInvalidData struct {
	Column string
	Row    int
	Reason string
}

func (e *ErrInvalidData) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("invalid data in column '%s' (row %d): %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("invalid data in column '%s': %s", e.Column, e.Reason)
}

// ErrEmptyResult indicates an intermediate mining stage produced nothing.
// The stage-specific message lets callers tell "no patterns exist" apart
// from "no match for this query".
type ErrEmptyResult struct {
	Stage   string
	Message string
}

func (e *ErrEmptyResult) Error() string {
	return e.Message
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
