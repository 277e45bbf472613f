package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	sharedpg "github.com/BJS-kr/whatup/shared/storage/pg"
)

const threadColumns = `
    t.id, t.title, t.description, t.max_length, t.auto_accept,
    t.allow_consecutive_contribution, t.author_id, u.nickname,
    t.like_count, t.created_at, t.updated_at
FROM threads t
JOIN users u ON u.id = t.author_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanThread(row scanner) (domain.ThreadMetadata, error) {
	var t domain.ThreadMetadata
	err := row.Scan(
		&t.Id, &t.Title, &t.Description, &t.MaxLength, &t.AutoAccept,
		&t.AllowConsecutiveContribution, &t.Author.Id, &t.Author.Nickname,
		&t.LikeCount, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *Storage) CreateThread(ctx context.Context, data domain.ThreadCreationData) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO threads (id, title, description, max_length, auto_accept, allow_consecutive_contribution, author_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			data.Id, data.Title, data.Description, data.MaxLength,
			data.AutoAccept, data.AllowConsecutiveContribution, data.Author.Id,
		)
		if err != nil {
			return fmt.Errorf("failed to insert thread: %w", sharedpg.Classify(err))
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO thread_contents (id, thread_id, author_id, body, status, content_order)
            VALUES ($1, $2, $3, $4, $5, 1)`,
			data.SeedId, data.Id, data.Author.Id, data.InitialContent, domain.ContentAccepted,
		)
		if err != nil {
			return fmt.Errorf("failed to insert seed content: %w", sharedpg.Classify(err))
		}
		return nil
	})
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	meta, err := scanThread(s.db.QueryRowContext(ctx, "SELECT"+threadColumns+" WHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, internal_errors.ErrNotFound
		}
		return domain.Thread{}, fmt.Errorf("failed to fetch thread metadata: %w", sharedpg.Classify(err))
	}

	contents, err := queryContents(ctx, s.db,
		"SELECT"+contentColumns+" WHERE c.thread_id = $1 ORDER BY c.content_order, c.created_at", id)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to fetch contents: %w", err)
	}

	return domain.Thread{ThreadMetadata: meta, Contents: contents}, nil
}

func (s *Storage) ListThreads(ctx context.Context, filter domain.ThreadFilter) ([]domain.ThreadMetadata, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT" + threadColumns)

	switch filter.Kind {
	case domain.ThreadListMine:
		args = append(args, filter.Viewer)
		query.WriteString(" WHERE t.author_id = $1")
	case domain.ThreadListOthers:
		args = append(args, filter.Viewer)
		query.WriteString(" WHERE t.author_id <> $1")
	case domain.ThreadListLiked:
		args = append(args, filter.Viewer)
		query.WriteString(" JOIN thread_likes l ON l.thread_id = t.id AND l.user_id = $1")
	}

	if filter.Kind == domain.ThreadListTrending {
		query.WriteString(" ORDER BY t.like_count DESC, t.updated_at DESC")
	} else {
		query.WriteString(" ORDER BY t.created_at DESC")
	}

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", sharedpg.Classify(err))
	}
	defer rows.Close()

	threads := []domain.ThreadMetadata{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", sharedpg.Classify(err))
	}
	return threads, nil
}

func (s *Storage) UpdateThread(ctx context.Context, data domain.ThreadUpdateData) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE threads
        SET description = $3, max_length = $4, auto_accept = $5,
            allow_consecutive_contribution = $6, updated_at = now()
        WHERE id = $1 AND author_id = $2`,
		data.Id, data.Requester, data.Description, data.MaxLength,
		data.AutoAccept, data.AllowConsecutiveContribution,
	)
	return affected(res, err, "update thread")
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId, owner domain.UserId) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM threads WHERE id = $1 AND author_id = $2", id, owner)
	return affected(res, err, "delete thread")
}

func (s *Storage) ToggleThreadLike(ctx context.Context, id domain.ThreadId, user domain.UserId) (domain.ThreadLike, error) {
	like := domain.ThreadLike{ThreadId: id}
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, "SELECT TRUE FROM threads WHERE id = $1 FOR UPDATE", id).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return internal_errors.ErrNotFound
			}
			return fmt.Errorf("failed to lock thread: %w", sharedpg.Classify(err))
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM thread_likes WHERE thread_id = $1 AND user_id = $2", id, user)
		removed, err := affected(res, err, "delete like")
		if err != nil {
			return err
		}

		delta := -1
		if !removed {
			if _, err := tx.ExecContext(ctx, "INSERT INTO thread_likes (thread_id, user_id) VALUES ($1, $2)", id, user); err != nil {
				return fmt.Errorf("failed to insert like: %w", sharedpg.Classify(err))
			}
			delta = 1
		}
		like.Liked = !removed

		err = tx.QueryRowContext(ctx,
			"UPDATE threads SET like_count = like_count + $2 WHERE id = $1 RETURNING like_count",
			id, delta,
		).Scan(&like.LikeCount)
		if err != nil {
			return fmt.Errorf("failed to update like count: %w", sharedpg.Classify(err))
		}
		return nil
	})
	if err != nil {
		return domain.ThreadLike{}, err
	}
	return like, nil
}

// affected reports whether a statement touched any row.
func affected(res sql.Result, err error, op string) (bool, error) {
	if err != nil {
		if err = sharedpg.Classify(err); internal_errors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}
	return n > 0, nil
}
