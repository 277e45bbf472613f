package events

import (
	"context"
	"testing"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(content domain.ContentId) domain.Event {
	return domain.Event{
		Kind:        domain.EventAccepted,
		ThreadId:    "thread-1",
		ThreadTitle: "Gophers",
		ContentId:   content,
		AuthorId:    "user-b",
		RecipientId: "user-b",
		OccurredAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestChannelQueueFIFO(t *testing.T) {
	q := NewChannelQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, testEvent("c1")))
	require.NoError(t, q.Push(ctx, testEvent("c2")))
	assert.Equal(t, 2, q.Len())

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", first.ContentId)
	assert.Equal(t, "c2", second.ContentId)
}

func TestChannelQueueFull(t *testing.T) {
	q := NewChannelQueue(1)
	require.NoError(t, q.Push(context.Background(), testEvent("c1")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Push(ctx, testEvent("c2")), context.DeadlineExceeded)
}

func TestChannelQueueCancelledPopDrainsBuffer(t *testing.T) {
	q := NewChannelQueue(2)
	require.NoError(t, q.Push(context.Background(), testEvent("c1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", ev.ContentId)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChannelQueueClose(t *testing.T) {
	q := NewChannelQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close(), "close is idempotent")

	assert.ErrorIs(t, q.Push(context.Background(), testEvent("c1")), ErrClosed)
	_, err := q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
