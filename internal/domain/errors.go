package domain

import "errors"

var (
	// ErrNotFound is reported when a selection or lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized is returned when the viewer lacks the rights for an operation.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrModelValidation rejects malformed input before it reaches the store.
	ErrModelValidation = errors.New("model validation failed")
	// ErrUniqueViolation rejects writes that would duplicate a unique row or value.
	ErrUniqueViolation = errors.New("unique violation")
	// ErrNoQuestions is the NotFound outcome of a question selection.
	ErrNoQuestions = NewError(ErrNotFound, "No questions found")
)

// Kind names an outcome class shared by every transport.
type Kind string

const (
	KindNotFound        Kind = "NotFound"
	KindNotAuthorized   Kind = "NotAuthorized"
	KindModelValidation Kind = "ModelValidation"
	KindUniqueViolation Kind = "UniqueViolation"
	KindInternal        Kind = "Internal"
)

// KindOf classifies err. Anything outside the taxonomy is KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrModelValidation):
		return KindModelValidation
	case errors.Is(err, ErrUniqueViolation):
		return KindUniqueViolation
	default:
		return KindInternal
	}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NewError builds an error of the given kind whose message is exactly msg.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
