package service

import (
	"context"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	"github.com/BJS-kr/whatup/shared/utils"
)

type ContentService interface {
	Submit(ctx context.Context, tok *abort.Token, data domain.ContentCreationData) abort.Result[domain.Content]
	Accept(ctx context.Context, tok *abort.Token, id domain.ContentId, owner domain.UserId) abort.Result[domain.Content]
	Reject(ctx context.Context, tok *abort.Token, id domain.ContentId, owner domain.UserId) abort.Result[domain.Content]
	RequestChanges(ctx context.Context, tok *abort.Token, id domain.ContentId, owner domain.UserId, message string) abort.Result[domain.Content]
	UpdatePending(ctx context.Context, tok *abort.Token, id domain.ContentId, author domain.UserId, body domain.ContentBody) abort.Result[domain.Content]
	Like(ctx context.Context, tok *abort.Token, id domain.ContentId) abort.Result[int]
	Pending(ctx context.Context, tok *abort.Token, thread domain.ThreadId, requester domain.UserId) abort.Result[[]domain.Content]
}

// Content runs the contribution workflow. Contents start PENDING or
// ACCEPTED, move at most once more and never leave a terminal status.
type Content struct {
	storage    storage.ContentStorage
	dispatcher Dispatcher
	policy     abort.Policy
	clock      clock
}

func NewContent(storage storage.ContentStorage, dispatcher Dispatcher, policy abort.Policy) *Content {
	return &Content{storage: storage, dispatcher: dispatcher, policy: policy}
}

// outcome is what a committed unit of work produced. Events are only
// dispatched once the pipeline reports success.
type outcome struct {
	content domain.Content
	events  []domain.Event
}

func (c *Content) emit(o outcome) domain.Content {
	for _, ev := range o.events {
		c.dispatcher.Dispatch(ev)
	}
	return o.content
}

func (c *Content) event(kind domain.EventKind, thread domain.ThreadMetadata, content domain.Content, recipient domain.UserId) domain.Event {
	return domain.Event{
		Kind:           kind,
		ThreadId:       thread.Id,
		ThreadTitle:    thread.Title,
		ContentId:      content.Id,
		AuthorId:       content.Author.Id,
		AuthorNickname: content.Author.Nickname,
		RecipientId:    recipient,
		OccurredAt:     c.clock.now(),
	}
}

// Submit adds a contribution to a thread. The owner's and auto-accepted
// threads' contributions are accepted right away, the rest wait for review.
func (c *Content) Submit(ctx context.Context, tok *abort.Token, data domain.ContentCreationData) abort.Result[domain.Content] {
	// one id per request so a retried attempt can't insert a second row
	id := utils.NewId()

	policy := c.policy.Named("content.submit").WithMessage("failed to submit content")
	res := abort.Try(ctx, tok, policy, func(ctx context.Context) (outcome, error) {
		var out outcome
		err := c.storage.Atomically(ctx, func(tx storage.ContentTx) error {
			thread, err := tx.LockThread(data.ThreadId)
			if err != nil {
				return hideNotFound(err, "thread")
			}
			// an earlier attempt may have committed after its deadline
			if saved, err := tx.Content(id); err == nil {
				out = c.submitted(thread, saved)
				return nil
			} else if !internal_errors.IsNotFound(err) {
				return err
			}
			if err := checkBody(data.Body, thread.MaxLength); err != nil {
				return err
			}

			parent, err := resolveParent(tx, thread.Id, data.ParentId)
			if err != nil {
				return err
			}
			accepted, err := tx.AcceptedCount(thread.Id)
			if err != nil {
				return err
			}

			now := c.clock.now()
			content := domain.Content{
				Id:        id,
				ThreadId:  thread.Id,
				Author:    domain.Author{Id: data.Author.Id, Nickname: data.Author.Nickname},
				ParentId:  parent,
				Body:      data.Body,
				Order:     accepted + 1,
				CreatedAt: now,
				UpdatedAt: now,
			}

			isOwner := thread.IsOwner(data.Author.Id)
			if thread.AutoAccept || isOwner {
				if !isOwner && !thread.AllowConsecutiveContribution {
					last, found, err := tx.LastAccepted(thread.Id)
					if err != nil {
						return err
					}
					if found && last.Author.Id == data.Author.Id {
						return abort.Rejection("consecutive contributions not allowed")
					}
				}
				content.Status = domain.ContentAccepted
			} else {
				dup, err := tx.HasPending(thread.Id, parent, data.Author.Id)
				if err != nil {
					return err
				}
				if dup {
					return abort.Rejection("duplicate pending contribution")
				}
				content.Status = domain.ContentPending
			}

			if err := tx.InsertContent(content); err != nil {
				return err
			}

			out = c.submitted(thread, content)
			return nil
		})
		return out, err
	})
	return abort.Collapse(res, c.emit)
}

// submitted notifies the thread owner about someone else's contribution.
func (c *Content) submitted(thread domain.ThreadMetadata, content domain.Content) outcome {
	out := outcome{content: content}
	if thread.IsOwner(content.Author.Id) {
		return out
	}
	kind := domain.EventNewSubmission
	if content.Status == domain.ContentAccepted {
		kind = domain.EventNewContribution
	}
	out.events = append(out.events, c.event(kind, thread, content, thread.Author.Id))
	return out
}

// resolveParent checks an explicit parent or falls back to the latest content.
func resolveParent(tx storage.ContentTx, thread domain.ThreadId, explicit *domain.ContentId) (*domain.ContentId, error) {
	if explicit != nil {
		parent, err := tx.Content(*explicit)
		if err != nil {
			return nil, hideNotFound(err, "parent content")
		}
		if parent.ThreadId != thread {
			return nil, notFound("parent content")
		}
		id := parent.Id
		return &id, nil
	}

	last, found, err := tx.LastContent(thread)
	if err != nil || !found {
		return nil, err
	}
	id := last.Id
	return &id, nil
}

// moderate loads a PENDING content of a thread owned by owner and locks the thread.
func moderate(tx storage.ContentTx, id domain.ContentId, owner domain.UserId) (domain.ThreadMetadata, domain.Content, error) {
	content, err := tx.Content(id)
	if err != nil {
		return domain.ThreadMetadata{}, domain.Content{}, hideMissing(err)
	}
	thread, err := tx.LockThread(content.ThreadId)
	if err != nil {
		return domain.ThreadMetadata{}, domain.Content{}, hideMissing(err)
	}
	if !thread.IsOwner(owner) {
		return domain.ThreadMetadata{}, domain.Content{}, notFoundOrUnauthorized()
	}
	if content.Status.IsTerminal() {
		return domain.ThreadMetadata{}, domain.Content{}, errNotPending()
	}
	return thread, content, nil
}

func errNotPending() *abort.Reason {
	return abort.Rejection("content is not pending")
}

// Accept appends a pending content to the story and rejects the other
// pending contents answering the same parent.
func (c *Content) Accept(ctx context.Context, tok *abort.Token, id domain.ContentId, owner domain.UserId) abort.Result[domain.Content] {
	policy := c.policy.Named("content.accept").WithMessage("failed to accept content")
	res := abort.Try(ctx, tok, policy, func(ctx context.Context) (outcome, error) {
		var out outcome
		err := c.storage.Atomically(ctx, func(tx storage.ContentTx) error {
			thread, content, err := moderate(tx, id, owner)
			if err != nil {
				return err
			}

			accepted, err := tx.AcceptedCount(thread.Id)
			if err != nil {
				return err
			}
			ok, err := tx.SetStatus(id, domain.ContentPending, domain.ContentAccepted, accepted+1)
			if err != nil {
				return err
			}
			if !ok {
				return errNotPending()
			}
			content.Status = domain.ContentAccepted
			content.Order = accepted + 1

			out = outcome{content: content}
			out.events = append(out.events, c.event(domain.EventAccepted, thread, content, content.Author.Id))

			if content.ParentId == nil {
				return nil
			}
			siblings, err := tx.RejectPendingSiblings(thread.Id, *content.ParentId, id)
			if err != nil {
				return err
			}
			for _, sibling := range siblings {
				out.events = append(out.events, c.event(domain.EventRejected, thread, sibling, sibling.Author.Id))
			}
			return nil
		})
		return out, err
	})
	return abort.Collapse(res, c.emit)
}

func (c *Content) Reject(ctx context.Context, tok *abort.Token, id domain.ContentId, owner domain.UserId) abort.Result[domain.Content] {
	policy := c.policy.Named("content.reject").WithMessage("failed to reject content")
	res := abort.Try(ctx, tok, policy, func(ctx context.Context) (outcome, error) {
		var out outcome
		err := c.storage.Atomically(ctx, func(tx storage.ContentTx) error {
			thread, content, err := moderate(tx, id, owner)
			if err != nil {
				return err
			}
			ok, err := tx.SetStatus(id, domain.ContentPending, domain.ContentRejected, 0)
			if err != nil {
				return err
			}
			if !ok {
				return errNotPending()
			}
			content.Status = domain.ContentRejected
			out = outcome{
				content: content,
				events:  []domain.Event{c.event(domain.EventRejected, thread, content, content.Author.Id)},
			}
			return nil
		})
		return out, err
	})
	return abort.Collapse(res, c.emit)
}

// RequestChanges asks the author of a pending content to revise it.
// Nothing is stored, the author is only notified.
func (c *Content) RequestChanges(ctx context.Context, tok *abort.Token, id domain.ContentId, owner domain.UserId, message string) abort.Result[domain.Content] {
	policy := c.policy.Named("content.request_changes").WithMessage("failed to request changes")
	res := abort.Try(ctx, tok, policy, func(ctx context.Context) (outcome, error) {
		if message == "" {
			return outcome{}, abort.Rejection("message is empty")
		}
		var out outcome
		err := c.storage.Atomically(ctx, func(tx storage.ContentTx) error {
			thread, content, err := moderate(tx, id, owner)
			if err != nil {
				return err
			}
			ev := c.event(domain.EventChangeRequest, thread, content, content.Author.Id)
			ev.Message = message
			out = outcome{content: content, events: []domain.Event{ev}}
			return nil
		})
		return out, err
	})
	return abort.Collapse(res, c.emit)
}

// UpdatePending replaces the body of the author's own pending content.
func (c *Content) UpdatePending(ctx context.Context, tok *abort.Token, id domain.ContentId, author domain.UserId, body domain.ContentBody) abort.Result[domain.Content] {
	policy := c.policy.Named("content.update").WithMessage("failed to update content")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.Content, error) {
		var updated domain.Content
		err := c.storage.Atomically(ctx, func(tx storage.ContentTx) error {
			content, err := tx.Content(id)
			if err != nil {
				return hideMissing(err)
			}
			if content.Author.Id != author {
				return notFoundOrUnauthorized()
			}
			if content.Status != domain.ContentPending {
				return errNotPending()
			}
			thread, err := tx.LockThread(content.ThreadId)
			if err != nil {
				return hideMissing(err)
			}
			if err := checkBody(body, thread.MaxLength); err != nil {
				return err
			}
			ok, err := tx.UpdatePendingBody(id, author, body)
			if err != nil {
				return err
			}
			if !ok {
				return errNotPending()
			}
			updated, err = tx.Content(id)
			return err
		})
		return updated, err
	})
}

func (c *Content) Like(ctx context.Context, tok *abort.Token, id domain.ContentId) abort.Result[int] {
	policy := c.policy.Named("content.like").WithMessage("failed to like content")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (int, error) {
		likes, err := c.storage.LikeContent(ctx, id)
		if err != nil {
			return 0, hideNotFound(err, "content")
		}
		return likes, nil
	})
}

// Pending lists the contents waiting for the owner's review, oldest first.
func (c *Content) Pending(ctx context.Context, tok *abort.Token, thread domain.ThreadId, requester domain.UserId) abort.Result[[]domain.Content] {
	policy := c.policy.Named("content.pending").WithMessage("failed to get pending contents")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) ([]domain.Content, error) {
		var meta domain.ThreadMetadata
		err := c.storage.Atomically(ctx, func(tx storage.ContentTx) error {
			var err error
			meta, err = tx.LockThread(thread)
			return err
		})
		if err != nil {
			return nil, hideMissing(err)
		}
		if !meta.IsOwner(requester) {
			return nil, notFoundOrUnauthorized()
		}
		return c.storage.PendingContents(ctx, thread)
	})
}
