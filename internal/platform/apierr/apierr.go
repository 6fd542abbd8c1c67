package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeValidation:        http.StatusBadRequest,
	domainagg.CodeUnauthenticated:   http.StatusUnauthorized,
	domainagg.CodeForbidden:         http.StatusForbidden,
	domainagg.CodeNotFound:          http.StatusNotFound,
	domainagg.CodeConflict:          http.StatusConflict,
	domainagg.CodeInvalidTransition: http.StatusUnprocessableEntity,
	domainagg.CodeRetryable:         http.StatusServiceUnavailable,
	domainagg.CodeInternal:          http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code domainagg.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts any error into an API error. Domain errors keep their
// code and client-facing message; internal failures never expose the cause.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var de *domainagg.Error
	if !errors.As(err, &de) || de.Code == domainagg.CodeInternal {
		return New(http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
	}
	msg := de.Message
	if msg == "" {
		msg = string(de.Code)
	}
	return New(StatusFor(de.Code), string(de.Code), errors.New(msg))
}
