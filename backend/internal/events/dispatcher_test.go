package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockNotifier struct {
	mu          sync.Mutex
	DeliverFunc func(ctx context.Context, ev domain.Event) error
	delivered   []domain.Event
	calls       int
}

func (m *MockNotifier) Deliver(ctx context.Context, ev domain.Event) error {
	m.mu.Lock()
	m.calls++
	fn := m.DeliverFunc
	m.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.delivered = append(m.delivered, ev)
	m.mu.Unlock()
	return nil
}

func (m *MockNotifier) Delivered() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event(nil), m.delivered...)
}

func (m *MockNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testOptions() Options {
	return Options{
		Workers:     2,
		MaxAttempts: 3,
		PushTimeout: 50 * time.Millisecond,
	}
}

func TestDispatcherDelivers(t *testing.T) {
	notifier := &MockNotifier{}
	d := NewDispatcher(NewChannelQueue(8), notifier, testOptions())
	d.Start(context.Background())
	defer d.Stop()

	before := testutil.ToFloat64(eventsDispatched.WithLabelValues(string(domain.EventAccepted)))
	d.Dispatch(testEvent("c1"))
	d.Dispatch(testEvent("c2"))

	require.Eventually(t, func() bool { return len(notifier.Delivered()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(eventsDispatched.WithLabelValues(string(domain.EventAccepted))))
}

func TestDispatcherRetriesFailedDelivery(t *testing.T) {
	failures := 2
	notifier := &MockNotifier{
		DeliverFunc: func(ctx context.Context, ev domain.Event) error {
			if ev.Attempts < failures {
				return errors.New("database unavailable")
			}
			return nil
		},
	}
	d := NewDispatcher(NewChannelQueue(8), notifier, testOptions())
	d.Start(context.Background())
	defer d.Stop()

	d.Dispatch(testEvent("c1"))

	require.Eventually(t, func() bool { return len(notifier.Delivered()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, notifier.Delivered()[0].Attempts)
	assert.Equal(t, 3, notifier.Calls())
}

func TestDispatcherDropsAfterMaxAttempts(t *testing.T) {
	notifier := &MockNotifier{
		DeliverFunc: func(ctx context.Context, ev domain.Event) error {
			return errors.New("always broken")
		},
	}
	d := NewDispatcher(NewChannelQueue(8), notifier, testOptions())
	before := testutil.ToFloat64(eventsDelivered.WithLabelValues(string(domain.EventAccepted), "dropped"))

	d.Start(context.Background())
	d.Dispatch(testEvent("c1"))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(eventsDelivered.WithLabelValues(string(domain.EventAccepted), "dropped")) == before+1
	}, time.Second, 5*time.Millisecond)
	d.Stop()

	assert.Equal(t, 3, notifier.Calls())
	assert.Empty(t, notifier.Delivered())
}

func TestDispatchNeverBlocksTheCaller(t *testing.T) {
	d := NewDispatcher(NewChannelQueue(1), &MockNotifier{}, testOptions())
	before := testutil.ToFloat64(eventsDropped)

	start := time.Now()
	d.Dispatch(testEvent("c1"))
	d.Dispatch(testEvent("c2")) // nobody pops, so the queue is full

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(eventsDropped))
}

func TestDispatcherStopDrainsBufferedEvents(t *testing.T) {
	notifier := &MockNotifier{}
	d := NewDispatcher(NewChannelQueue(8), notifier, testOptions())
	for _, id := range []string{"c1", "c2", "c3"} {
		d.Dispatch(testEvent(id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Stop()
	d.Stop()

	assert.Len(t, notifier.Delivered(), 3)
}

func TestDispatcherOverRedis(t *testing.T) {
	q, _ := setupTestRedis(t)
	notifier := &MockNotifier{}
	d := NewDispatcher(q, notifier, testOptions())
	d.Start(context.Background())
	defer d.Stop()

	d.Dispatch(testEvent("c1"))

	require.Eventually(t, func() bool { return len(notifier.Delivered()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, testEvent("c1"), notifier.Delivered()[0])
}
