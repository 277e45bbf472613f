// Package events delivers domain events to the notifier outside of the
// request that produced them.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/BJS-kr/whatup/shared/domain"
)

var ErrClosed = errors.New("events: queue closed")

// Queue buffers events between Dispatch and the workers.
type Queue interface {
	Push(ctx context.Context, ev domain.Event) error
	// Pop blocks until an event is available, ctx is done or the queue is closed.
	Pop(ctx context.Context) (domain.Event, error)
	Close() error
}

// ChannelQueue is an in-process queue. Buffered events are drained by the
// workers on Stop and lost only if the process dies.
type ChannelQueue struct {
	ch        chan domain.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func NewChannelQueue(buffer int) *ChannelQueue {
	return &ChannelQueue{
		ch:     make(chan domain.Event, buffer),
		closed: make(chan struct{}),
	}
}

func (q *ChannelQueue) Push(ctx context.Context, ev domain.Event) error {
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- ev:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop prefers buffered events, so a cancelled ctx still drains the buffer.
func (q *ChannelQueue) Pop(ctx context.Context) (domain.Event, error) {
	select {
	case ev := <-q.ch:
		return ev, nil
	default:
	}

	select {
	case ev := <-q.ch:
		return ev, nil
	case <-q.closed:
		return domain.Event{}, ErrClosed
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	}
}

func (q *ChannelQueue) Len() int {
	return len(q.ch)
}

func (q *ChannelQueue) Close() error {
	q.closeOnce.Do(func() { close(q.closed) })
	return nil
}
