package form

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrBusy is returned when an operation is attempted while a submission
	// is in flight.
	ErrBusy = errors.New("form is saving")
	// ErrLocked is returned by Registry.SetValue while fields are locked.
	ErrLocked = errors.New("fields are locked")
	// ErrUnknownField is returned for names that were never registered.
	ErrUnknownField = errors.New("unknown field")
	// ErrNoIdentity is returned by Delete on a record without an id.
	ErrNoIdentity = errors.New("record has no identity")
	// ErrNotConfirmed is returned by Delete without a confirmed user intent.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrReadOnly is returned when a derived field is edited directly.
	ErrReadOnly = errors.New("field is read-only")
)

// ValidationError reports field-scoped validation failures. It never reaches
// the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// SubmissionError is an adapter, transport or server failure reduced to the
// single message shown to the operator.
type SubmissionError struct {
	Message string
	cause   error
}

func (e *SubmissionError) Error() string { return e.Message }

// Unwrap exposes the underlying error for logging.
func (e *SubmissionError) Unwrap() error { return e.cause }

// LoadError reports an option set that failed to load. It is shown inline on
// the fields that use the set and blocks nothing else.
type LoadError struct {
	OptionSet string
	Message   string
	cause     error
}

func (e *LoadError) Error() string { return e.Message }

// Unwrap exposes the underlying error for logging.
func (e *LoadError) Unwrap() error { return e.cause }

// NewLoadError wraps an option load failure.
func NewLoadError(optionSet string, err error) *LoadError {
	msg := "Could not load options"
	if err != nil {
		msg = "Could not load options: " + SubmissionMessage(err)
	}
	return &LoadError{OptionSet: optionSet, Message: msg, cause: err}
}
