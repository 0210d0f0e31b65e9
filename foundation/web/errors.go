package web

import (
	"net/http"
)

// Machine readable error codes shared by every endpoint.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error is used to pass an error during the request through the
// application with web specific context.
type Error struct {
	Err    error
	Status int
	Code   string
}

// NewRequestError wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

// NewCodedError is NewRequestError with an explicit error code.
func NewCodedError(err error, status int, code string) error {
	return &Error{Err: err, Status: status, Code: code}
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the explicit code or one derived from the status.
func (e *Error) ErrorCode() string {
	if e.Code != "" {
		return e.Code
	}

	return StatusCode(e.Status)
}

// StatusCode maps an HTTP status to the generic error code.
func StatusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	}

	return CodeInternal
}

// ErrorResponse is the form used for API responses from failures.
type ErrorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}
