package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// NotFoundError ...
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func campaignNotFound(id int64) error {
	return &NotFoundError{Resource: "campaign", Key: strconv.FormatInt(id, 10)}
}

func executionNotFound(id int64) error {
	return &NotFoundError{Resource: "execution", Key: strconv.FormatInt(id, 10)}
}

// IllegalTransitionError is returned when an action is not allowed in the current status
type IllegalTransitionError struct {
	Entity string
	Action string
	Status string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %s", e.Action, e.Entity, e.Status)
}

// ValidationError ...
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DispatchError is returned when an execution could not be handed to the dispatcher,
// the execution is kept as FAILED and can be retried
type DispatchError struct {
	ExecutionID int64
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch execution %d: %v", e.ExecutionID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// error codes of the error envelope
const (
	CodeNotFound          = "NOT_FOUND"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeValidation        = "VALIDATION"
	CodeDispatchFailed    = "DISPATCH_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// errorStatus maps err to the http status and code of the error envelope
func errorStatus(err error) (int, string) {
	var notFound *NotFoundError
	var illegal *IllegalTransitionError
	var validation *ValidationError
	var dispatch *DispatchError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &illegal):
		return http.StatusConflict, CodeIllegalTransition
	case errors.As(err, &validation):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &dispatch):
		return http.StatusBadGateway, CodeDispatchFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
