package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/logger"
)

// Notifier turns an event into something the recipient sees.
type Notifier interface {
	Deliver(ctx context.Context, ev domain.Event) error
}

type Options struct {
	Workers     int
	MaxAttempts int
	// PushTimeout bounds how long Dispatch may block on a full queue.
	PushTimeout time.Duration
	// DeliverTimeout bounds a single Deliver call.
	DeliverTimeout time.Duration
	// RetryDelay is waited before an event that failed delivery is queued again.
	RetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	if o.PushTimeout <= 0 {
		o.PushTimeout = 500 * time.Millisecond
	}
	if o.DeliverTimeout <= 0 {
		o.DeliverTimeout = 5 * time.Second
	}
	return o
}

// Dispatcher hands events to a Queue and runs workers that deliver them.
// Delivery is at least once and best effort: a failed event is queued again
// until MaxAttempts, then dropped.
type Dispatcher struct {
	queue    Queue
	notifier Notifier
	opts     Options

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewDispatcher(queue Queue, notifier Notifier, opts Options) *Dispatcher {
	return &Dispatcher{queue: queue, notifier: notifier, opts: opts.withDefaults()}
}

// Dispatch queues ev. It never fails the caller: a full or broken queue
// only costs the event.
func (d *Dispatcher) Dispatch(ev domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.PushTimeout)
	defer cancel()

	if err := d.queue.Push(ctx, ev); err != nil {
		eventsDropped.Inc()
		logger.Component("events").Error("failed to queue event",
			"kind", ev.Kind,
			"thread_id", ev.ThreadId,
			"content_id", ev.ContentId,
			"error", err)
		return
	}
	eventsDispatched.WithLabelValues(string(ev.Kind)).Inc()
}

// Start launches the workers. They run until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true

	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i)
	}
	logger.Component("events").Info("dispatcher started", "workers", d.opts.Workers)
}

// Stop cancels the workers and waits for them to finish draining.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	logger.Component("events").Info("dispatcher stopped")
}

func (d *Dispatcher) work(ctx context.Context, worker int) {
	defer d.wg.Done()
	log := logger.Component("events").With("worker", worker)

	for {
		ev, err := d.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return
			}
			log.Error("failed to pop event", "error", err)
			select {
			case <-time.After(d.opts.PushTimeout):
			case <-ctx.Done():
				return
			}
			continue
		}
		d.deliver(ctx, ev)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev domain.Event) {
	log := logger.Component("events")
	kind := string(ev.Kind)

	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.DeliverTimeout)
	err := d.notifier.Deliver(deliverCtx, ev)
	cancel()
	if err == nil {
		eventsDelivered.WithLabelValues(kind, "ok").Inc()
		return
	}

	ev.Attempts++
	if ev.Attempts >= d.opts.MaxAttempts {
		eventsDelivered.WithLabelValues(kind, "dropped").Inc()
		log.Error("giving up on event",
			"kind", ev.Kind,
			"recipient_id", ev.RecipientId,
			"attempts", ev.Attempts,
			"error", err)
		return
	}

	eventsDelivered.WithLabelValues(kind, "retry").Inc()
	log.Warn("delivery failed, requeueing",
		"kind", ev.Kind,
		"attempts", ev.Attempts,
		"error", err)

	if d.opts.RetryDelay > 0 {
		select {
		case <-time.After(d.opts.RetryDelay):
		case <-ctx.Done():
		}
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.PushTimeout)
	defer cancel()
	if err := d.queue.Push(pushCtx, ev); err != nil {
		eventsDropped.Inc()
		log.Error("failed to requeue event", "kind", ev.Kind, "error", err)
	}
}
