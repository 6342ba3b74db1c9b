package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrStorage    = errors.New("storage error")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // actual error
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Fields  []FieldError // Optional: every failing field, for multi-field validation

	// Storage diagnostics. Op names the failed store operation
	// (e.g. "shoppingListDao.create"), Code is the driver's result code
	// when it exposes one, Cause is the underlying driver error.
	Op    string
	Code  int
	Cause error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// Validation bundles several field failures into one error. The message joins
// the individual messages so the error still reads well in logs.
// Returns nil when fields is empty, so callers can collect and return in one step:
//
//	var fields []apperror.FieldError
//	...
//	if err := apperror.Validation(fields...); err != nil { return err }
func Validation(fields ...FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f.Message
	}
	return &AppError{
		Err:     ErrValidation,
		Message: strings.Join(msgs, "; "),
		Field:   fields[0].Field,
		Fields:  fields,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Storage wraps a persistence failure. HTTP handlers map it to 500 and attach
// Op, Code and the cause's message as diagnostics.
func Storage(op string, code int, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: "database operation failed",
		Op:      op,
		Code:    code,
		Cause:   cause,
	}
}
