// Package abort implements per-request cancellation: a write-once Token,
// the Reason that trips it, and the Try pipeline that turns failures of
// wrapped operations into tripped tokens instead of raw errors.
package abort

import (
	"errors"
	"fmt"
	"net/http"

	internal_errors "github.com/BJS-kr/whatup/shared/errors"
)

// Responsible tells who caused a failure.
type Responsible int

const (
	Client Responsible = iota + 1
	Server
)

func (r Responsible) String() string {
	switch r {
	case Client:
		return "client"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// Reason is the classified explanation attached to a tripped Token.
// It is also used as the error value of business rule violations.
type Reason struct {
	Responsible Responsible
	Message     string
	// Status overrides the default HTTP status of the responsible side.
	Status int
}

func (r *Reason) Error() string {
	return r.Message
}

// StatusCode maps the reason to an outer HTTP status.
func (r *Reason) StatusCode() int {
	if r.Status != 0 {
		return r.Status
	}
	if r.Responsible == Client {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Rejection returns a CLIENT reason to be used as a business rule error.
func Rejection(message string) *Reason {
	return &Reason{Responsible: Client, Message: message}
}

// Rejectionf is Rejection with formatting.
func Rejectionf(format string, args ...any) *Reason {
	return Rejection(fmt.Sprintf(format, args...))
}

// Failure returns a SERVER reason.
func Failure(message string) *Reason {
	return &Reason{Responsible: Server, Message: message}
}

// Fault is a transient, retryable failure such as a timeout
// or a dropped database connection.
type Fault struct {
	Kind string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return f.Kind
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault marks err as transient.
func NewFault(kind string, err error) *Fault {
	return &Fault{Kind: kind, Err: err}
}

// IsFault reports whether err is transient.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// Classifier turns an error surviving retries into a Reason.
type Classifier func(err error) *Reason

// DefaultClassify keeps business rejections, maps HTTP-coded client errors
// to CLIENT reasons and hides everything else behind message.
func DefaultClassify(message string) Classifier {
	return func(err error) *Reason {
		var reason *Reason
		if errors.As(err, &reason) {
			return reason
		}
		var coded *internal_errors.ErrorWithStatusCode
		if errors.As(err, &coded) && coded.StatusCode < http.StatusInternalServerError {
			return &Reason{Responsible: Client, Message: coded.Message, Status: coded.StatusCode}
		}
		return Failure(message)
	}
}
