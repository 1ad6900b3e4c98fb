package marketing

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the error envelope returned by the backend
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail ...
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPError is returned for every non-2xx response
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func statusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound ...
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict is true for rejected state transitions
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

// IsValidation ...
func IsValidation(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

// IsDispatchFailed is true when a send reached the backend and the execution was marked FAILED
func IsDispatchFailed(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusBadGateway || httpErr.Code == "DISPATCH_FAILED"
}
