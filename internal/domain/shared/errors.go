package shared

import (
	"errors"
	"fmt"
)

// DomainError is a business rule violation. Code is the stable machine
// readable name (INVALID_AMOUNT, HAS_DEPENDENTS, ...) that the HTTP layer
// maps to a status and an ERR_ prefixed response code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// Is matches any DomainError with the same code, so
// errors.Is(NewNotFoundError("safe"), ErrNotFound) holds.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	return errors.As(target, &other) && other.Code == e.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound is returned by repositories for missing rows and for rows owned
// by another tenant; the two cases are indistinguishable to callers.
var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(ErrNotFound.Code, resource+" not found")
}

// NewHasDependentsError refuses a delete that would orphan referencing rows
func NewHasDependentsError(resource, dependents string) *DomainError {
	return NewDomainErrorf("HAS_DEPENDENTS", "Cannot delete %s: it still has %s", resource, dependents)
}

// IsDomainError reports whether err wraps a DomainError with the given code
func IsDomainError(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
