// Package storage declares the persistence contracts used by the services.
// Implementations live in the pg and memory subpackages; both report a
// missing row as errors.ErrNotFound and a duplicate as errors.ErrAlreadyExists.
package storage

import (
	"context"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
)

type UserStorage interface {
	SaveUser(ctx context.Context, user domain.User) error
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
}

type ThreadStorage interface {
	// CreateThread stores the thread and its seed content (ACCEPTED, order 1) together.
	CreateThread(ctx context.Context, data domain.ThreadCreationData) error
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	ListThreads(ctx context.Context, filter domain.ThreadFilter) ([]domain.ThreadMetadata, error)
	// UpdateThread and DeleteThread report false when the thread is missing
	// or not owned by the requester.
	UpdateThread(ctx context.Context, data domain.ThreadUpdateData) (bool, error)
	DeleteThread(ctx context.Context, id domain.ThreadId, owner domain.UserId) (bool, error)
	ToggleThreadLike(ctx context.Context, id domain.ThreadId, user domain.UserId) (domain.ThreadLike, error)
}

type ContentStorage interface {
	// Atomically runs fn as one unit of work. Nothing fn wrote is visible
	// unless fn returns nil and ctx is still live when it returns.
	Atomically(ctx context.Context, fn func(tx ContentTx) error) error
	PendingContents(ctx context.Context, thread domain.ThreadId) ([]domain.Content, error)
	LikeContent(ctx context.Context, id domain.ContentId) (int, error)
}

// ContentTx is the view of storage inside Atomically.
type ContentTx interface {
	// LockThread reads thread metadata and serializes concurrent units of
	// work on the same thread until the end of the transaction.
	LockThread(id domain.ThreadId) (domain.ThreadMetadata, error)
	Content(id domain.ContentId) (domain.Content, error)
	AcceptedCount(thread domain.ThreadId) (int, error)
	LastAccepted(thread domain.ThreadId) (domain.Content, bool, error)
	// LastContent is the non-rejected content with the highest order,
	// newest first among equal orders.
	LastContent(thread domain.ThreadId) (domain.Content, bool, error)
	HasPending(thread domain.ThreadId, parent *domain.ContentId, author domain.UserId) (bool, error)
	InsertContent(content domain.Content) error
	// SetStatus moves id from one status to another only if it is still in
	// from, and reports whether it did.
	SetStatus(id domain.ContentId, from, to domain.ContentStatus, order int) (bool, error)
	// RejectPendingSiblings rejects every PENDING content at parent except
	// the given one and returns what it rejected.
	RejectPendingSiblings(thread domain.ThreadId, parent domain.ContentId, except domain.ContentId) ([]domain.Content, error)
	UpdatePendingBody(id domain.ContentId, author domain.UserId, body domain.ContentBody) (bool, error)
}

type NoticeStorage interface {
	SaveNotice(ctx context.Context, notice domain.Notice) error
	// Notices returns the recipient's notices, newest first.
	Notices(ctx context.Context, user domain.UserId) ([]domain.Notice, error)
	UnreadCount(ctx context.Context, user domain.UserId) (int, error)
	MarkRead(ctx context.Context, id domain.NoticeId, user domain.UserId) (bool, error)
	MarkAllRead(ctx context.Context, user domain.UserId) (int, error)
	// PurgeRead deletes read notices created before the cutoff.
	PurgeRead(ctx context.Context, before time.Time) (int, error)
}
