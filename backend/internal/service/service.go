// Package service holds the business rules of whatup. Every public method
// takes the request's *abort.Token explicitly and runs its storage steps
// through abort.Try, so callers only ever see a Result and a tripped token.
package service

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/config"
	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
)

// Dispatcher receives domain events after a successful operation.
// Implementations must not block for long and never fail the caller.
type Dispatcher interface {
	Dispatch(ev domain.Event)
}

// Policies are the pipeline settings services run their steps under.
type Policies struct {
	Default abort.Policy
	Auth    abort.Policy
}

func DefaultPolicies() Policies {
	return Policies{Default: abort.DefaultPolicy(), Auth: abort.AuthPolicy()}
}

// PoliciesFromConfig applies the configured pipeline defaults.
func PoliciesFromConfig(cfg config.Pipeline) Policies {
	p := DefaultPolicies()
	if cfg.Timeout > 0 {
		p.Default = p.Default.WithTimeout(cfg.Timeout)
	}
	if cfg.AuthTimeout > 0 {
		p.Auth = p.Auth.WithTimeout(cfg.AuthTimeout)
	}
	if cfg.Retries != nil {
		p.Default = p.Default.WithRetries(*cfg.Retries)
		p.Auth = p.Auth.WithRetries(*cfg.Retries)
	}
	if cfg.Backoff > 0 {
		p.Default = p.Default.WithBackoff(cfg.Backoff)
		p.Auth = p.Auth.WithBackoff(cfg.Backoff)
	}
	return p
}

const notFoundOrUnauthorizedMsg = "not found or unauthorized"

// notFoundOrUnauthorized hides whether a row exists from non-owners.
func notFoundOrUnauthorized() *abort.Reason {
	return &abort.Reason{Responsible: abort.Client, Message: notFoundOrUnauthorizedMsg, Status: http.StatusNotFound}
}

// hideMissing turns a storage ErrNotFound into notFoundOrUnauthorized.
func hideMissing(err error) error {
	if internal_errors.IsNotFound(err) {
		return notFoundOrUnauthorized()
	}
	return err
}

func notFound(what string) *abort.Reason {
	return &abort.Reason{Responsible: abort.Client, Message: what + " not found", Status: http.StatusNotFound}
}

// hideNotFound names the missing entity for public lookups.
func hideNotFound(err error, what string) error {
	if internal_errors.IsNotFound(err) {
		return notFound(what)
	}
	return err
}

// checkBody enforces the per-thread length limit in characters.
func checkBody(body domain.ContentBody, maxLength int) error {
	if strings.TrimSpace(body) == "" {
		return abort.Rejection("content is empty")
	}
	if utf8.RuneCountInString(body) > maxLength {
		return abort.Rejectionf("content exceeds max length of %d characters", maxLength)
	}
	return nil
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}
