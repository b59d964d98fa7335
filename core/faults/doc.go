// Package faults defines the error taxonomy shared by the counting services.
//
// Every service error is a Fault carrying one of four codes: NOT_FOUND,
// CONFLICT, VALIDATION_ERROR, or STORAGE_ERROR. Validation and lifecycle
// errors are raised before any write is attempted, so a rejected call has no
// partial side effects. Storage faults wrap the underlying driver error and
// are always propagated to the caller.
//
// Handlers translate faults to HTTP responses via HTTPStatus, keeping the
// status mapping in one place.
package faults
