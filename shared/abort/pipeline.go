package abort

import (
	"context"
	"errors"
	"time"

	"github.com/BJS-kr/whatup/shared/logger"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultAuthTimeout = 2 * time.Second
	DefaultRetries     = 2
	DefaultBackoff     = time.Second
	DefaultMessage     = "operation failed"
)

// Op is a unit of work wrapped by Try.
type Op[T any] func(ctx context.Context) (T, error)

// Policy configures the three stages of Try.
type Policy struct {
	Name     string        // metrics and log label
	Timeout  time.Duration // deadline per attempt, <= 0 disables it
	Retries  int           // retries after the first attempt, faults only
	Backoff  time.Duration // delay before retry k is k*Backoff
	Message  string        // SERVER message when the classifier can't tell
	Classify Classifier
}

func DefaultPolicy() Policy {
	return Policy{
		Name:    "operation",
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
		Backoff: DefaultBackoff,
		Message: DefaultMessage,
	}
}

// AuthPolicy is used for credential operations.
func AuthPolicy() Policy {
	return DefaultPolicy().WithTimeout(DefaultAuthTimeout)
}

func (p Policy) Named(name string) Policy {
	p.Name = name
	return p
}

func (p Policy) WithTimeout(d time.Duration) Policy {
	p.Timeout = d
	return p
}

func (p Policy) WithRetries(n int) Policy {
	p.Retries = n
	return p
}

func (p Policy) WithBackoff(d time.Duration) Policy {
	p.Backoff = d
	return p
}

func (p Policy) WithMessage(msg string) Policy {
	p.Message = msg
	return p
}

func (p Policy) WithClassifier(c Classifier) Policy {
	p.Classify = c
	return p
}

// Try runs op under p: each attempt gets a deadline, transient faults are
// retried with linear backoff, and whatever error is left trips tok.
// A token that is already tripped short-circuits without running op.
func Try[T any](ctx context.Context, tok *Token, p Policy, op Op[T]) Result[T] {
	if tok.IsTripped() {
		pipelineShortCircuits.WithLabelValues(p.Name).Inc()
		return Cancelled[T]()
	}

	// Only pipeline-detected faults cancel work, not the inbound connection.
	ctx = context.WithoutCancel(ctx)

	v, err := retryIfFault(ctx, p, func(ctx context.Context) (T, error) {
		return resultBefore(ctx, p.Timeout, op)
	})
	if err != nil {
		return abortIfError[T](tok, p, err)
	}
	return Ok(v)
}

// resultBefore abandons op once d elapses and reports a timeout fault.
// op's context is cancelled at that point so its writes can roll back.
func resultBefore[T any](ctx context.Context, d time.Duration, op Op[T]) (T, error) {
	if d <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			var zero T
			return zero, NewFault("operation timeout", o.err)
		}
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		return zero, NewFault("operation timeout", ctx.Err())
	}
}

func retryIfFault[T any](ctx context.Context, p Policy, attempt Op[T]) (T, error) {
	log := logger.Component("abort")
	for n := 1; ; n++ {
		v, err := attempt(ctx)
		if err == nil {
			pipelineAttempts.WithLabelValues(p.Name, "ok").Inc()
			return v, nil
		}
		if !IsFault(err) {
			pipelineAttempts.WithLabelValues(p.Name, "error").Inc()
			return v, err
		}
		pipelineAttempts.WithLabelValues(p.Name, "fault").Inc()
		if n > p.Retries {
			return v, err
		}

		delay := time.Duration(n) * p.Backoff
		log.Warn("transient fault, retrying",
			"operation", p.Name,
			"attempt", n,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return v, err
		}
	}
}

func abortIfError[T any](tok *Token, p Policy, err error) Result[T] {
	classify := p.Classify
	if classify == nil {
		classify = DefaultClassify(p.message())
	}

	reason := classify(err)
	switch {
	case reason == nil:
		reason = Failure(p.message())
	case reason.Responsible != Client && reason.Responsible != Server:
		msg := reason.Message
		if msg == "" {
			msg = p.message()
		}
		reason = &Reason{Responsible: Server, Message: msg, Status: reason.Status}
	}

	args := []any{
		"operation", p.Name,
		"responsible", reason.Responsible.String(),
		"reason", reason.Message,
		"error", err,
	}
	if reason.Responsible == Client {
		logger.Component("abort").Info("operation rejected", args...)
	} else {
		logger.Component("abort").Error("operation aborted", args...)
	}

	if tok.Trip(reason) {
		pipelineCancellations.WithLabelValues(p.Name, reason.Responsible.String()).Inc()
	}
	return Cancelled[T]()
}

func (p Policy) message() string {
	if p.Message == "" {
		return DefaultMessage
	}
	return p.Message
}
