// Package errors defines the error kinds the service surfaces to callers.
// Every constructor carries the HTTP status the handler layer should use,
// so usecases and repositories can return errors without reinterpreting
// them on the way up.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorResp struct {
	HttpCode int    `json:"code"`
	Message  string `json:"message"`
}

func (e *ErrorResp) Error() string {
	return e.Message
}

func BadRequest(message string) error {
	return &ErrorResp{HttpCode: http.StatusBadRequest, Message: message}
}

func UnauthorizedError(message string) error {
	return &ErrorResp{HttpCode: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) error {
	return &ErrorResp{HttpCode: http.StatusNotFound, Message: message}
}

// Conflict reports a duplicate resource, e.g. defining a ticket class
// twice for the same event.
func Conflict(message string) error {
	return &ErrorResp{HttpCode: http.StatusConflict, Message: message}
}

// InvalidState reports an illegal state transition, e.g. cancelling a
// booking that is already cancelled.
func InvalidState(message string) error {
	return &ErrorResp{HttpCode: http.StatusConflict, Message: message}
}

// InsufficientStock reports a reservation that exceeds the remaining
// quantity. The remaining count is part of the message so the caller
// can tell how many tickets are still available.
func InsufficientStock(remaining int) error {
	return &ErrorResp{
		HttpCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("not enough tickets available, remaining: %d", remaining),
	}
}

// EventNotEligible reports an event that is expired or not yet approved.
func EventNotEligible(message string) error {
	return &ErrorResp{HttpCode: http.StatusUnprocessableEntity, Message: message}
}

// DependencyUnavailable reports a failed or timed out call to a sibling
// service. This is the only kind callers may retry.
func DependencyUnavailable(message string) error {
	return &ErrorResp{HttpCode: http.StatusServiceUnavailable, Message: message}
}

func InternalServerError(message string) error {
	return &ErrorResp{HttpCode: http.StatusInternalServerError, Message: message}
}

// HttpCode extracts the status carried by err, defaulting to 500 for
// errors that did not originate from this package.
func HttpCode(err error) int {
	var resp *ErrorResp
	if errors.As(err, &resp) {
		return resp.HttpCode
	}
	return http.StatusInternalServerError
}
