package faults

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code classifies a fault for callers and for HTTP status mapping.
type Code string

const (
	// CodeNotFound indicates a referenced session (or baseline) does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict indicates the operation is illegal in the session's current state.
	CodeConflict Code = "CONFLICT"
	// CodeValidation indicates malformed input, rejected before any store interaction.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeStorage indicates an underlying store operation failed.
	CodeStorage Code = "STORAGE_ERROR"
)

// Fault is the error type returned by the counting services.
type Fault struct {
	Code    Code
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As chains.
func (f *Fault) Unwrap() error {
	return f.Err
}

// NotFound builds a NOT_FOUND fault.
func NotFound(format string, args ...any) *Fault {
	return &Fault{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a CONFLICT fault.
func Conflict(format string, args ...any) *Fault {
	return &Fault{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a VALIDATION_ERROR fault.
func Validation(format string, args ...any) *Fault {
	return &Fault{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a store error as a STORAGE_ERROR fault. Store failures are
// always surfaced, never swallowed.
func Storage(err error, format string, args ...any) *Fault {
	return &Fault{Code: CodeStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of err, or CodeStorage when err is not a Fault.
// Unknown errors at the service boundary are store failures by construction.
func CodeOf(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return CodeStorage
}

// HTTPStatus maps a fault to its HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeValidation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
