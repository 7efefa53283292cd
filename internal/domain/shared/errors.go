package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a domain failure into one of the stable categories
// callers can dispatch on.
type ErrorKind string

const (
	KindValidation           ErrorKind = "VALIDATION"
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindInvalidTransition    ErrorKind = "INVALID_TRANSITION"
	KindInvalidJustification ErrorKind = "INVALID_JUSTIFICATION"
	KindStorage              ErrorKind = "STORAGE"
)

// DomainError represents a domain-level error with a stable kind and a
// human-readable reason. Storage errors keep their cause for unwrapping.
type DomainError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

func Validationf(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func InvalidJustificationf(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidJustification, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a storage-layer failure. The operation was rolled back in
// full, so the caller may retry it as a whole.
func Storage(op string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindStorage,
		Message: fmt.Sprintf("storage failure during %s", op),
		cause:   cause,
	}
}

// KindOf returns the error's kind, or KindStorage for any unclassified error.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a domain error to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidJustification:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
