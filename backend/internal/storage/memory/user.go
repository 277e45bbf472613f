package memory

import (
	"context"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
)

func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.emails[user.Email]; ok {
		return internal_errors.ErrAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.state.users[user.Id] = user
	s.state.emails[user.Email] = user.Id
	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.state.emails[email]
	if !ok {
		return domain.User{}, internal_errors.ErrNotFound
	}
	return s.state.users[id], nil
}
