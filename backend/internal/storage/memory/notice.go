package memory

import (
	"context"
	"sort"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
)

func (s *Storage) SaveNotice(ctx context.Context, notice domain.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.notices[notice.Id]; ok {
		return internal_errors.ErrAlreadyExists
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = s.now()
	}
	s.state.notices[notice.Id] = notice
	return nil
}

func (s *Storage) Notices(ctx context.Context, user domain.UserId) ([]domain.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notices := []domain.Notice{}
	for _, n := range s.state.notices {
		if n.UserId == user {
			notices = append(notices, n)
		}
	}
	sort.Slice(notices, func(i, j int) bool {
		return notices[i].CreatedAt.After(notices[j].CreatedAt)
	})
	return notices, nil
}

func (s *Storage) UnreadCount(ctx context.Context, user domain.UserId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, notice := range s.state.notices {
		if notice.UserId == user && !notice.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Storage) MarkRead(ctx context.Context, id domain.NoticeId, user domain.UserId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.state.notices[id]
	if !ok || n.UserId != user {
		return false, nil
	}
	n.IsRead = true
	s.state.notices[id] = n
	return true, nil
}

func (s *Storage) MarkAllRead(ctx context.Context, user domain.UserId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for id, n := range s.state.notices {
		if n.UserId == user && !n.IsRead {
			n.IsRead = true
			s.state.notices[id] = n
			marked++
		}
	}
	return marked, nil
}

func (s *Storage) PurgeRead(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, n := range s.state.notices {
		if n.IsRead && n.CreatedAt.Before(before) {
			delete(s.state.notices, id)
			purged++
		}
	}
	return purged, nil
}
