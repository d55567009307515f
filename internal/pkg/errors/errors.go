package errors

import "net/http"

// HTTPError is an error carrying the status the management API answers with.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

func BadRequest(msg string) *HTTPError { return &HTTPError{StatusCode: http.StatusBadRequest, Message: msg} }

func Unauthorized(msg string) *HTTPError { return &HTTPError{StatusCode: http.StatusUnauthorized, Message: msg} }

func NotFound(msg string) *HTTPError { return &HTTPError{StatusCode: http.StatusNotFound, Message: msg} }

func MethodNotAllowed(msg string) *HTTPError {
	return &HTTPError{StatusCode: http.StatusMethodNotAllowed, Message: msg}
}

func Internal(msg string) *HTTPError { return &HTTPError{StatusCode: http.StatusInternalServerError, Message: msg} }
