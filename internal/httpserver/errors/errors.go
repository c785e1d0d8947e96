// Package errors provides typed API errors carrying HTTP status codes.
package errors

import (
	"fmt"
	"net/http"
)

// APIError pairs an HTTP status code with a client-facing message. Err holds
// the underlying cause for logs.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string, err error) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: message, Err: err}
}

func NewNotFoundError(message string, err error) *APIError {
	return &APIError{Code: http.StatusNotFound, Message: message, Err: err}
}

func NewInternalServerError(message string, err error) *APIError {
	return &APIError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

func NewGatewayTimeoutError(message string, err error) *APIError {
	return &APIError{Code: http.StatusGatewayTimeout, Message: message, Err: err}
}
