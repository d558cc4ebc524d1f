package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the workflow engine. Handlers map these to HTTP
// status codes; the engine never retries or swallows them.
var (
	// ErrNotFound: the target request id does not exist.
	ErrNotFound = errors.New("request not found")

	// ErrForbidden: the acting role lacks the capability for the action,
	// or the actor is not the assignee required by the action.
	ErrForbidden = errors.New("role not allowed for this action")

	// ErrInvalidTransition: the request's current status is not in the
	// action's source-state set. Also returned to the loser of a
	// concurrent duplicate submission.
	ErrInvalidTransition = errors.New("invalid transition for current status")
)

// ValidationError reports missing or invalid payload fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError for the named fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// IsValidation reports whether err is a payload validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
