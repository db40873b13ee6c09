package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling at the
// handler boundary without handlers knowing concrete error types.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors for the engine's error kinds - use with errors.Is().
// Every guard failure inside the workflow engine resolves to exactly one
// of these; handlers map them to HTTP statuses, callers may branch on them.
var (
	// ErrNotFound indicates an unknown document, document type, or approver.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a duplicate: approver already on the
	// document, production v1 already minted, or a numbering collision.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState indicates a lifecycle guard violation, e.g. editing
	// a Released document or submitting something that is not a Draft.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotAuthorized indicates the actor lacks the required relationship:
	// not the creator, not in the approver set, wrong tenant, not an admin.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a transiently unreachable dependency
	// (database, numbering counter). The only kind eligible for retry.
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrUnauthorized indicates authentication failure (missing/invalid token).
	ErrUnauthorized = errors.New("unauthorized")
)

// StateError reports a lifecycle guard violation with enough context for
// the caller to see which transition was refused and why.
type StateError struct {
	DocumentID string
	Current    string // status the document is actually in
	Attempted  string // transition or operation that was refused
}

func (e *StateError) Error() string {
	return "document " + e.DocumentID + " is " + e.Current + ": cannot " + e.Attempted
}

// StatusCode implements the HTTPError interface
func (e *StateError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrInvalidState
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ConflictError represents a resource conflict with details about the
// existing resource, e.g. a duplicate approver or an existing production v1.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, approver, document_type)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrAlreadyExists
func (e *ConflictError) Is(target error) bool {
	return target == ErrAlreadyExists
}
