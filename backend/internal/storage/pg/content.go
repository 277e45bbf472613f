package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	sharedpg "github.com/BJS-kr/whatup/shared/storage/pg"
)

var contentColumns = contentColumnsFrom("thread_contents")

func scanContent(row scanner) (domain.Content, error) {
	var (
		c      domain.Content
		parent sql.NullString
	)
	err := row.Scan(
		&c.Id, &c.ThreadId, &c.Author.Id, &c.Author.Nickname, &parent,
		&c.Body, &c.Status, &c.Order, &c.LikeCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if parent.Valid {
		c.ParentId = &parent.String
	}
	return c, err
}

func queryContents(ctx context.Context, q sharedpg.Querier, query string, args ...any) ([]domain.Content, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sharedpg.Classify(err)
	}
	defer rows.Close()

	contents := []domain.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, sharedpg.Classify(err)
	}
	return contents, nil
}

// Atomically runs fn in a transaction bound to ctx, so a unit of work
// abandoned by its deadline is rolled back by the driver.
func (s *Storage) Atomically(ctx context.Context, fn func(tx storage.ContentTx) error) error {
	return sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&contentTx{ctx: ctx, q: tx})
	})
}

func (s *Storage) PendingContents(ctx context.Context, thread domain.ThreadId) ([]domain.Content, error) {
	contents, err := queryContents(ctx, s.db,
		"SELECT"+contentColumns+" WHERE c.thread_id = $1 AND c.status = 'PENDING' ORDER BY c.created_at, c.id", thread)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return []domain.Content{}, nil
		}
		return nil, fmt.Errorf("failed to fetch pending contents: %w", err)
	}
	return contents, nil
}

func (s *Storage) LikeContent(ctx context.Context, id domain.ContentId) (int, error) {
	var likes int
	err := s.db.QueryRowContext(ctx,
		"UPDATE thread_contents SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count", id,
	).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to like content: %w", sharedpg.Classify(err))
	}
	return likes, nil
}

type contentTx struct {
	ctx context.Context
	q   sharedpg.Querier
}

func (t *contentTx) LockThread(id domain.ThreadId) (domain.ThreadMetadata, error) {
	meta, err := scanThread(t.q.QueryRowContext(t.ctx, "SELECT"+threadColumns+" WHERE t.id = $1 FOR UPDATE OF t", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ThreadMetadata{}, internal_errors.ErrNotFound
		}
		return domain.ThreadMetadata{}, fmt.Errorf("failed to lock thread: %w", sharedpg.Classify(err))
	}
	return meta, nil
}

func (t *contentTx) Content(id domain.ContentId) (domain.Content, error) {
	c, err := scanContent(t.q.QueryRowContext(t.ctx, "SELECT"+contentColumns+" WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Content{}, internal_errors.ErrNotFound
		}
		return domain.Content{}, fmt.Errorf("failed to fetch content: %w", sharedpg.Classify(err))
	}
	return c, nil
}

func (t *contentTx) AcceptedCount(thread domain.ThreadId) (int, error) {
	var n int
	err := t.q.QueryRowContext(t.ctx,
		"SELECT count(*) FROM thread_contents WHERE thread_id = $1 AND status = 'ACCEPTED'", thread,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count accepted contents: %w", sharedpg.Classify(err))
	}
	return n, nil
}

func (t *contentTx) LastAccepted(thread domain.ThreadId) (domain.Content, bool, error) {
	return t.last("SELECT"+contentColumns+`
        WHERE c.thread_id = $1 AND c.status = 'ACCEPTED'
        ORDER BY c.content_order DESC, c.created_at DESC LIMIT 1`, thread)
}

func (t *contentTx) LastContent(thread domain.ThreadId) (domain.Content, bool, error) {
	return t.last("SELECT"+contentColumns+`
        WHERE c.thread_id = $1 AND c.status <> 'REJECTED'
        ORDER BY c.content_order DESC, c.created_at DESC LIMIT 1`, thread)
}

func (t *contentTx) last(query string, thread domain.ThreadId) (domain.Content, bool, error) {
	c, err := scanContent(t.q.QueryRowContext(t.ctx, query, thread))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Content{}, false, nil
		}
		return domain.Content{}, false, fmt.Errorf("failed to fetch last content: %w", sharedpg.Classify(err))
	}
	return c, true, nil
}

func (t *contentTx) HasPending(thread domain.ThreadId, parent *domain.ContentId, author domain.UserId) (bool, error) {
	var exists bool
	err := t.q.QueryRowContext(t.ctx, `
        SELECT EXISTS (
            SELECT 1 FROM thread_contents
            WHERE thread_id = $1 AND author_id = $2 AND status = 'PENDING'
              AND parent_content_id IS NOT DISTINCT FROM $3::uuid
        )`, thread, author, nullable(parent),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending contents: %w", sharedpg.Classify(err))
	}
	return exists, nil
}

func (t *contentTx) InsertContent(c domain.Content) error {
	_, err := t.q.ExecContext(t.ctx, `
        INSERT INTO thread_contents
            (id, thread_id, author_id, parent_content_id, body, status, content_order, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.Id, c.ThreadId, c.Author.Id, nullable(c.ParentId), c.Body, c.Status, c.Order, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert content: %w", sharedpg.Classify(err))
	}
	return nil
}

func (t *contentTx) SetStatus(id domain.ContentId, from, to domain.ContentStatus, order int) (bool, error) {
	res, err := t.q.ExecContext(t.ctx, `
        UPDATE thread_contents
        SET status = $3,
            content_order = CASE WHEN $4::int > 0 THEN $4::int ELSE content_order END,
            updated_at = now()
        WHERE id = $1 AND status = $2`,
		id, from, to, order,
	)
	return affected(res, err, "set content status")
}

func (t *contentTx) RejectPendingSiblings(thread domain.ThreadId, parent domain.ContentId, except domain.ContentId) ([]domain.Content, error) {
	contents, err := queryContents(t.ctx, t.q, `
        WITH rejected AS (
            UPDATE thread_contents
            SET status = 'REJECTED', updated_at = now()
            WHERE thread_id = $1 AND parent_content_id = $2 AND id <> $3 AND status = 'PENDING'
            RETURNING *
        )
        SELECT`+contentColumnsFrom("rejected")+` ORDER BY c.created_at, c.id`,
		thread, parent, except,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reject siblings: %w", err)
	}
	return contents, nil
}

func (t *contentTx) UpdatePendingBody(id domain.ContentId, author domain.UserId, body domain.ContentBody) (bool, error) {
	res, err := t.q.ExecContext(t.ctx, `
        UPDATE thread_contents SET body = $3, updated_at = now()
        WHERE id = $1 AND author_id = $2 AND status = 'PENDING'`,
		id, author, body,
	)
	return affected(res, err, "update content")
}

// contentColumnsFrom selects content rows with author nicknames from any
// relation shaped like thread_contents.
func contentColumnsFrom(relation string) string {
	return `
    c.id, c.thread_id, c.author_id, u.nickname, c.parent_content_id,
    c.body, c.status, c.content_order, c.like_count, c.created_at, c.updated_at
FROM ` + relation + ` c
JOIN users u ON u.id = c.author_id`
}
