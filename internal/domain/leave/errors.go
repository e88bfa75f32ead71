package leave

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindStorageConflict   Kind = "storage_conflict"
	KindValidation        Kind = "validation"
	KindInternal          Kind = "internal"
)

var (
	ErrNotFound          = errors.New("leave application not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("actor not authorized for this action")
	ErrValidation        = errors.New("validation failed")
	// ErrStorageConflict is an invalid transition observed at write time.
	ErrStorageConflict = fmt.Errorf("%w: concurrent modification", ErrInvalidTransition)
)

// Issue is one field-level validation problem.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
	Issues  []Issue
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, sentinel error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

func invalidTransition(format string, args ...any) *Error {
	return newError(KindInvalidTransition, ErrInvalidTransition, format, args...)
}

func unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, ErrUnauthorized, format, args...)
}

func validationError(issues ...Issue) *Error {
	msg := "validation failed"
	if len(issues) == 1 {
		msg = issues[0].Message
	}
	return &Error{Kind: KindValidation, Message: msg, Err: ErrValidation, Issues: issues}
}

// KindOf classifies any error returned from this package. Errors from outside
// the taxonomy are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed.Kind != "" {
		return typed.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStorageConflict):
		return KindStorageConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrValidation):
		return KindValidation
	}
	return KindInternal
}

// IssuesOf returns the validation issues carried by err, if any.
func IssuesOf(err error) []Issue {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Issues
	}
	return nil
}

// Result is the outcome handed back across the workflow boundary.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Status  Status `json:"status,omitempty"`
}

func resultOf(status Status, err error) Result {
	if err == nil {
		return Result{Success: true, Status: status}
	}
	return Result{Success: false, Error: err.Error(), Kind: KindOf(err)}
}
