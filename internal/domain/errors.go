package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured application error with an HTTP status code.
// Message is the short machine-stable error string; Detail optionally carries
// an actionable human message surfaced by the UI.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Detail  string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error constructors.

func ErrBadRequest(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func ErrUnauthorized(msg, detail string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: msg, Detail: detail}
}

func ErrForbidden(msg, detail string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: msg, Detail: detail}
}

func ErrNotFound(msg string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg}
}

func ErrInternal(msg string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// ErrUpstream wraps a collaborator failure (identity/payment/completion service).
func ErrUpstream(msg string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
