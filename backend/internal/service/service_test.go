package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/backend/internal/storage/memory"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/config"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func testPolicy() abort.Policy {
	return abort.DefaultPolicy().WithTimeout(200 * time.Millisecond).WithBackoff(time.Millisecond)
}

// tickingClock returns strictly increasing timestamps.
func tickingClock() clock {
	base := time.Now().UTC()
	var tick atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Millisecond)
	}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingDispatcher) Dispatch(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingDispatcher) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func (r *recordingDispatcher) Kinds() []domain.EventKind {
	kinds := []domain.EventKind{}
	for _, ev := range r.Events() {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// faultyContentStorage fails the first Faults units of work with a
// transient fault after running them, so their writes roll back.
type faultyContentStorage struct {
	storage.ContentStorage
	Faults int32
	calls  atomic.Int32
}

func (f *faultyContentStorage) Atomically(ctx context.Context, fn func(tx storage.ContentTx) error) error {
	n := f.calls.Add(1)
	return f.ContentStorage.Atomically(ctx, func(tx storage.ContentTx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if n <= f.Faults {
			return abort.NewFault("connection reset", nil)
		}
		return nil
	})
}

// slowContentStorage makes the first Slow units of work outlive their deadline.
type slowContentStorage struct {
	storage.ContentStorage
	Slow  int32
	calls atomic.Int32
}

func (s *slowContentStorage) Atomically(ctx context.Context, fn func(tx storage.ContentTx) error) error {
	n := s.calls.Add(1)
	return s.ContentStorage.Atomically(ctx, func(tx storage.ContentTx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if n <= s.Slow {
			<-ctx.Done()
		}
		return nil
	})
}

// lateAckStorage commits the first Late units of work but reports them
// only after their deadline has passed.
type lateAckStorage struct {
	storage.ContentStorage
	Late  int32
	calls atomic.Int32
}

func (l *lateAckStorage) Atomically(ctx context.Context, fn func(tx storage.ContentTx) error) error {
	if l.calls.Add(1) > l.Late {
		return l.ContentStorage.Atomically(ctx, fn)
	}
	if err := l.ContentStorage.Atomically(context.WithoutCancel(ctx), fn); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

type fixture struct {
	store      *memory.Storage
	threads    *Thread
	contents   *Content
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return newFixtureWith(t, store, store)
}

func newFixtureWith(t *testing.T, store *memory.Storage, contents storage.ContentStorage) *fixture {
	t.Helper()
	d := &recordingDispatcher{}
	c := NewContent(contents, d, testPolicy())
	c.clock = tickingClock()
	return &fixture{
		store:      store,
		threads:    NewThread(store, markdown.New(), testPolicy(), 10),
		contents:   c,
		dispatcher: d,
	}
}

var (
	alice = domain.User{Id: "user-a", Nickname: "alice"}
	bob   = domain.User{Id: "user-b", Nickname: "bob"}
	carol = domain.User{Id: "user-c", Nickname: "carol"}
)

func (f *fixture) createThread(t *testing.T, owner domain.User, mutate ...func(*domain.ThreadCreationData)) domain.Thread {
	t.Helper()
	data := domain.ThreadCreationData{
		Title:          "Gophers",
		Description:    "a story",
		MaxLength:      50,
		Author:         owner,
		InitialContent: "Once upon a time",
	}
	for _, m := range mutate {
		m(&data)
	}
	tok := abort.NewToken()
	id, ok := f.threads.Create(context.Background(), tok, data).Get()
	require.True(t, ok, "create thread: %v", tok.Reason())
	return f.thread(t, id)
}

func (f *fixture) thread(t *testing.T, id domain.ThreadId) domain.Thread {
	t.Helper()
	tok := abort.NewToken()
	thread, ok := f.threads.Get(context.Background(), tok, id).Get()
	require.True(t, ok, "get thread: %v", tok.Reason())
	return thread
}

func (f *fixture) submit(t *testing.T, thread domain.ThreadId, author domain.User, body string, parent *domain.ContentId) (domain.Content, *abort.Token) {
	t.Helper()
	tok := abort.NewToken()
	content, _ := f.contents.Submit(context.Background(), tok, domain.ContentCreationData{
		ThreadId: thread,
		Author:   author,
		Body:     body,
		ParentId: parent,
	}).Get()
	return content, tok
}

func (f *fixture) mustSubmit(t *testing.T, thread domain.ThreadId, author domain.User, body string, parent *domain.ContentId) domain.Content {
	t.Helper()
	content, tok := f.submit(t, thread, author, body, parent)
	require.False(t, tok.IsTripped(), "submit: %v", tok.Reason())
	return content
}

func (f *fixture) accept(t *testing.T, id domain.ContentId, owner domain.User) (domain.Content, *abort.Token) {
	t.Helper()
	tok := abort.NewToken()
	content, _ := f.contents.Accept(context.Background(), tok, id, owner.Id).Get()
	return content, tok
}

func requireReason(t *testing.T, tok *abort.Token, responsible abort.Responsible, message string) {
	t.Helper()
	require.True(t, tok.IsTripped(), "expected a tripped token")
	assert.Equal(t, responsible, tok.Reason().Responsible)
	assert.Equal(t, message, tok.Reason().Message)
}

// assertContiguousOrder checks that accepted orders are exactly 1..N.
func assertContiguousOrder(t *testing.T, thread domain.Thread) {
	t.Helper()
	for i, c := range thread.Accepted() {
		assert.Equal(t, i+1, c.Order, "accepted content %s out of sequence", c.Id)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestPoliciesFromConfig(t *testing.T) {
	retries := 0
	p := PoliciesFromConfig(config.Pipeline{
		Timeout:     3 * time.Second,
		AuthTimeout: time.Second,
		Retries:     &retries,
		Backoff:     10 * time.Millisecond,
	})

	assert.Equal(t, 3*time.Second, p.Default.Timeout)
	assert.Equal(t, time.Second, p.Auth.Timeout)
	assert.Equal(t, 0, p.Default.Retries)
	assert.Equal(t, 0, p.Auth.Retries)
	assert.Equal(t, 10*time.Millisecond, p.Default.Backoff)

	defaults := PoliciesFromConfig(config.Pipeline{})
	assert.Equal(t, abort.DefaultTimeout, defaults.Default.Timeout)
	assert.Equal(t, abort.DefaultAuthTimeout, defaults.Auth.Timeout)
	assert.Equal(t, abort.DefaultRetries, defaults.Default.Retries)
}
