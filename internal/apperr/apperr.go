package apperr

import (
	"errors"
	"net/http"
)

// Code classifies a business error so the HTTP layer can pick a status
// without inspecting message text.
type Code string

const (
	CodeValidation          Code = "validation_error"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodePayloadTooLarge     Code = "payload_too_large"
	CodePaymentNotCompleted Code = "payment_not_completed"
	CodePaymentMismatch     Code = "payment_mismatch"
	CodeUpstream            Code = "upstream_error"
	CodeInternal            Code = "internal_error"
)

// Error carries a code, a user-facing message and an optional cause.
// The message is what API clients see; the cause only goes to logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodePaymentMismatch:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodePaymentNotCompleted:
		return http.StatusBadRequest
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error          { return &Error{Code: CodeValidation, Message: msg} }
func Unauthorized(msg string) *Error        { return &Error{Code: CodeUnauthorized, Message: msg} }
func Forbidden(msg string) *Error           { return &Error{Code: CodeForbidden, Message: msg} }
func NotFound(msg string) *Error            { return &Error{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *Error            { return &Error{Code: CodeConflict, Message: msg} }
func PayloadTooLarge(msg string) *Error     { return &Error{Code: CodePayloadTooLarge, Message: msg} }
func PaymentNotCompleted(msg string) *Error { return &Error{Code: CodePaymentNotCompleted, Message: msg} }
func PaymentMismatch(msg string) *Error     { return &Error{Code: CodePaymentMismatch, Message: msg} }

func Upstream(msg string, err error) *Error {
	return &Error{Code: CodeUpstream, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "Error interno del servidor", Err: err}
}

// As unwraps err into an *Error when one is in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
