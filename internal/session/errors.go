package session

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrInvalidDraft is the target of ValidationError.
	ErrInvalidDraft = errors.New("draft does not pass validation")
	// ErrSuggestionNotFound is returned for unknown suggestion ids.
	ErrSuggestionNotFound = errors.New("suggestion not found")
	// ErrAlreadyApplied is returned when a suggestion was applied before.
	ErrAlreadyApplied = errors.New("suggestion already applied")
	// ErrNotActionable is returned for suggestions that carry no replacement.
	ErrNotActionable = errors.New("suggestion has no replacement to apply")
	// ErrBusy is returned while a cliché re-analysis is in flight.
	ErrBusy = errors.New("a re-analysis is already running")
	// ErrStale is returned when the session moved on while a re-analysis ran.
	ErrStale = errors.New("session changed while the analysis was running")
)

// ValidationError lists every rule a draft failed.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidDraft.Error() + ": " + strings.Join(e.Errors, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDraft
}
