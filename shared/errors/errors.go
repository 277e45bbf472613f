package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// ErrNotFound is returned by storage when a row does not exist
// or is not visible to the requester.
var ErrNotFound = &ErrorWithStatusCode{Message: "Not found", StatusCode: http.StatusNotFound}

// ErrAlreadyExists is returned by storage on unique violations.
var ErrAlreadyExists = &ErrorWithStatusCode{Message: "Already exists", StatusCode: http.StatusConflict}

func IsNotFound(err error) bool {
	var e *ErrorWithStatusCode
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

func IsAlreadyExists(err error) bool {
	var e *ErrorWithStatusCode
	return errors.As(err, &e) && e.StatusCode == http.StatusConflict
}

// StatusCode returns the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
