package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	sharedpg "github.com/BJS-kr/whatup/shared/storage/pg"
)

func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, nickname, pass_hash) VALUES ($1, $2, $3, $4)",
		user.Id, user.Email, user.Nickname, user.PassHash,
	)
	if err != nil {
		if err = sharedpg.Classify(err); internal_errors.IsAlreadyExists(err) {
			return err
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, nickname, pass_hash, created_at FROM users WHERE email = $1",
		email,
	).Scan(&user.Id, &user.Email, &user.Nickname, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to fetch user: %w", sharedpg.Classify(err))
	}
	return user, nil
}
