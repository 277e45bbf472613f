package memory

import (
	"context"
	"sort"
	"time"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
)

func (s *Storage) Atomically(ctx context.Context, fn func(tx storage.ContentTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&tx{state: work, now: s.now}); err != nil {
		return err
	}
	// an abandoned unit of work must not commit
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Storage) PendingContents(ctx context.Context, thread domain.ThreadId) ([]domain.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := []domain.Content{}
	for _, c := range s.state.contents {
		if c.ThreadId == thread && c.Status == domain.ContentPending {
			pending = append(pending, c)
		}
	}
	sortByCreation(pending)
	return pending, nil
}

func (s *Storage) LikeContent(ctx context.Context, id domain.ContentId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.state.contents[id]
	if !ok {
		return 0, internal_errors.ErrNotFound
	}
	c.LikeCount++
	s.state.contents[id] = c
	return c.LikeCount, nil
}

type tx struct {
	state *state
	now   func() time.Time
}

func (t *tx) LockThread(id domain.ThreadId) (domain.ThreadMetadata, error) {
	meta, ok := t.state.threads[id]
	if !ok {
		return domain.ThreadMetadata{}, internal_errors.ErrNotFound
	}
	return meta, nil
}

func (t *tx) Content(id domain.ContentId) (domain.Content, error) {
	c, ok := t.state.contents[id]
	if !ok {
		return domain.Content{}, internal_errors.ErrNotFound
	}
	return c, nil
}

func (t *tx) AcceptedCount(thread domain.ThreadId) (int, error) {
	n := 0
	for _, c := range t.state.contents {
		if c.ThreadId == thread && c.Status == domain.ContentAccepted {
			n++
		}
	}
	return n, nil
}

func (t *tx) LastAccepted(thread domain.ThreadId) (domain.Content, bool, error) {
	return t.last(thread, func(c domain.Content) bool { return c.Status == domain.ContentAccepted })
}

// LastContent skips REJECTED contents, they never become a parent.
func (t *tx) LastContent(thread domain.ThreadId) (domain.Content, bool, error) {
	return t.last(thread, func(c domain.Content) bool { return c.Status != domain.ContentRejected })
}

func (t *tx) last(thread domain.ThreadId, keep func(domain.Content) bool) (domain.Content, bool, error) {
	var best domain.Content
	found := false
	for _, c := range t.state.contents {
		if c.ThreadId != thread || !keep(c) {
			continue
		}
		if !found || c.Order > best.Order || (c.Order == best.Order && c.CreatedAt.After(best.CreatedAt)) {
			best, found = c, true
		}
	}
	return best, found, nil
}

func (t *tx) HasPending(thread domain.ThreadId, parent *domain.ContentId, author domain.UserId) (bool, error) {
	for _, c := range t.state.contents {
		if c.ThreadId == thread && c.Author.Id == author && c.Status == domain.ContentPending && c.SameParent(parent) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertContent(content domain.Content) error {
	if _, ok := t.state.contents[content.Id]; ok {
		return internal_errors.ErrAlreadyExists
	}
	if _, ok := t.state.threads[content.ThreadId]; !ok {
		return internal_errors.ErrNotFound
	}
	t.state.contents[content.Id] = content
	return nil
}

func (t *tx) SetStatus(id domain.ContentId, from, to domain.ContentStatus, order int) (bool, error) {
	c, ok := t.state.contents[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	if order > 0 {
		c.Order = order
	}
	c.UpdatedAt = t.now()
	t.state.contents[id] = c
	return true, nil
}

func (t *tx) RejectPendingSiblings(thread domain.ThreadId, parent domain.ContentId, except domain.ContentId) ([]domain.Content, error) {
	var rejected []domain.Content
	for id, c := range t.state.contents {
		if id == except || c.ThreadId != thread || c.Status != domain.ContentPending || !c.SameParent(&parent) {
			continue
		}
		c.Status = domain.ContentRejected
		c.UpdatedAt = t.now()
		t.state.contents[id] = c
		rejected = append(rejected, c)
	}
	sortByCreation(rejected)
	return rejected, nil
}

func (t *tx) UpdatePendingBody(id domain.ContentId, author domain.UserId, body domain.ContentBody) (bool, error) {
	c, ok := t.state.contents[id]
	if !ok || c.Author.Id != author || c.Status != domain.ContentPending {
		return false, nil
	}
	c.Body = body
	c.UpdatedAt = t.now()
	t.state.contents[id] = c
	return true, nil
}

func sortByCreation(contents []domain.Content) {
	sort.Slice(contents, func(i, j int) bool {
		if !contents[i].CreatedAt.Equal(contents[j].CreatedAt) {
			return contents[i].CreatedAt.Before(contents[j].CreatedAt)
		}
		return contents[i].Id < contents[j].Id
	})
}
