package service

import (
	"errors"
	"fmt"

	"github.com/joelkehle/claim-advocate/internal/casestore"
)

const (
	CodeValidation  = "validation"
	CodeNotFound    = "not_found"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

// Error carries a stable code for the transports to map onto their own
// status vocabulary.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return 400
	case CodeNotFound:
		return 404
	case CodeUnavailable:
		return 503
	default:
		return 500
	}
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Status: statusForCode(code), Err: err}
}

func validationError(err error) error {
	return newError(CodeValidation, err.Error(), err)
}

func notFound(id string) error {
	return newError(CodeNotFound, fmt.Sprintf("case %q not found", id), casestore.ErrNotFound)
}

// storeError maps store failures; ErrNotFound becomes a not_found error.
func storeError(id string, err error) error {
	if errors.Is(err, casestore.ErrNotFound) {
		return notFound(id)
	}
	return newError(CodeInternal, "case store: "+err.Error(), err)
}

// AsError returns the service error inside err, or an internal one.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return newError(CodeInternal, err.Error(), err)
}
