package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	sharedpg "github.com/BJS-kr/whatup/shared/storage/pg"
)

func (s *Storage) SaveNotice(ctx context.Context, n domain.Notice) error {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO notices (id, user_id, kind, title, message, thread_id, content_id, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.Id, n.UserId, n.Kind, n.Title, n.Message, n.ThreadId, n.ContentId, n.IsRead, createdAt,
	)
	if err != nil {
		if err = sharedpg.Classify(err); internal_errors.IsAlreadyExists(err) {
			return err
		}
		return fmt.Errorf("failed to insert notice: %w", err)
	}
	return nil
}

func (s *Storage) Notices(ctx context.Context, user domain.UserId) ([]domain.Notice, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, kind, title, message, thread_id, content_id, is_read, created_at
        FROM notices
        WHERE user_id = $1
        ORDER BY created_at DESC`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notices: %w", sharedpg.Classify(err))
	}
	defer rows.Close()

	notices := []domain.Notice{}
	for rows.Next() {
		var n domain.Notice
		if err := rows.Scan(&n.Id, &n.UserId, &n.Kind, &n.Title, &n.Message, &n.ThreadId, &n.ContentId, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notice: %w", err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notices: %w", sharedpg.Classify(err))
	}
	return notices, nil
}

func (s *Storage) UnreadCount(ctx context.Context, user domain.UserId) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM notices WHERE user_id = $1 AND NOT is_read", user).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notices: %w", sharedpg.Classify(err))
	}
	return n, nil
}

func (s *Storage) MarkRead(ctx context.Context, id domain.NoticeId, user domain.UserId) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE notices SET is_read = TRUE WHERE id = $1 AND user_id = $2", id, user)
	return affected(res, err, "mark notice read")
}

func (s *Storage) MarkAllRead(ctx context.Context, user domain.UserId) (int, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE notices SET is_read = TRUE WHERE user_id = $1 AND NOT is_read", user)
	return count(res, err, "mark notices read")
}

func (s *Storage) PurgeRead(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notices WHERE is_read AND created_at < $1", before)
	return count(res, err, "purge notices")
}

// count reports how many rows a statement touched.
func count(res sql.Result, err error, op string) (int, error) {
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, sharedpg.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, err)
	}
	return int(n), nil
}
