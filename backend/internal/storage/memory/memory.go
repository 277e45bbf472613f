// Package memory is an in-process storage with the same semantics as the
// Postgres storage. It backs the memory storage driver and service tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/domain"
)

var (
	_ storage.UserStorage    = (*Storage)(nil)
	_ storage.ThreadStorage  = (*Storage)(nil)
	_ storage.ContentStorage = (*Storage)(nil)
	_ storage.NoticeStorage  = (*Storage)(nil)
	_ storage.ContentTx      = (*tx)(nil)
)

type likeKey struct {
	thread domain.ThreadId
	user   domain.UserId
}

type state struct {
	users    map[domain.UserId]domain.User
	emails   map[domain.Email]domain.UserId
	threads  map[domain.ThreadId]domain.ThreadMetadata
	contents map[domain.ContentId]domain.Content
	likes    map[likeKey]struct{}
	notices  map[domain.NoticeId]domain.Notice
}

func (s *state) clone() *state {
	return &state{
		users:    maps.Clone(s.users),
		emails:   maps.Clone(s.emails),
		threads:  maps.Clone(s.threads),
		contents: maps.Clone(s.contents),
		likes:    maps.Clone(s.likes),
		notices:  maps.Clone(s.notices),
	}
}

// Storage guards a single state with a mutex. Units of work run serialized
// on a copy that replaces the state only on success.
type Storage struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *Storage {
	return &Storage{
		state: &state{
			users:    make(map[domain.UserId]domain.User),
			emails:   make(map[domain.Email]domain.UserId),
			threads:  make(map[domain.ThreadId]domain.ThreadMetadata),
			contents: make(map[domain.ContentId]domain.Content),
			likes:    make(map[likeKey]struct{}),
			notices:  make(map[domain.NoticeId]domain.Notice),
		},
		now: time.Now,
	}
}

func (s *Storage) Cleanup() error {
	return nil
}

// Ping reports only context cancellation.
func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}
