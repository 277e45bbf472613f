package service

import (
	"context"
	"fmt"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/logger"
	"github.com/BJS-kr/whatup/shared/utils"
)

type NoticeService interface {
	Deliver(ctx context.Context, ev domain.Event) error
	List(ctx context.Context, tok *abort.Token, user domain.UserId) abort.Result[[]domain.Notice]
	UnreadCount(ctx context.Context, tok *abort.Token, user domain.UserId) abort.Result[int]
	MarkRead(ctx context.Context, tok *abort.Token, id domain.NoticeId, user domain.UserId) abort.Result[domain.NoticeId]
	MarkAllRead(ctx context.Context, tok *abort.Token, user domain.UserId) abort.Result[int]
}

type Notice struct {
	storage storage.NoticeStorage
	policy  abort.Policy
	clock   clock
}

func NewNotice(storage storage.NoticeStorage, policy abort.Policy) *Notice {
	return &Notice{storage: storage, policy: policy}
}

// compose renders the title and message shown to the recipient.
func compose(ev domain.Event) (title, message string, ok bool) {
	switch ev.Kind {
	case domain.EventAccepted:
		return "Content Accepted",
			fmt.Sprintf("Your contribution to %q has been accepted and added to the story.", ev.ThreadTitle), true
	case domain.EventRejected:
		return "Content Rejected",
			fmt.Sprintf("Your contribution to %q was not accepted.", ev.ThreadTitle), true
	case domain.EventChangeRequest:
		return "Changes Requested",
			fmt.Sprintf("The creator of %q has requested changes to your contribution: %s", ev.ThreadTitle, ev.Message), true
	case domain.EventNewContribution:
		return "New Contribution Added",
			fmt.Sprintf("%s has added a new contribution to your story %q.", ev.AuthorNickname, ev.ThreadTitle), true
	case domain.EventNewSubmission:
		return "New Submission Pending",
			fmt.Sprintf("%s has submitted a new contribution to your story %q for review.", ev.AuthorNickname, ev.ThreadTitle), true
	default:
		return "", "", false
	}
}

// Deliver stores the notice for ev's recipient. Events addressed to their
// own author about their own submission are skipped.
func (n *Notice) Deliver(ctx context.Context, ev domain.Event) error {
	log := logger.Component("notice")

	title, message, ok := compose(ev)
	if !ok {
		log.Warn("unknown event kind", "kind", ev.Kind)
		return nil
	}
	if ev.RecipientId == "" {
		return nil
	}
	if (ev.Kind == domain.EventNewSubmission || ev.Kind == domain.EventNewContribution) && ev.RecipientId == ev.AuthorId {
		return nil
	}

	notice := domain.Notice{
		Id:        utils.NewId(),
		UserId:    ev.RecipientId,
		Kind:      ev.Kind,
		Title:     title,
		Message:   message,
		ThreadId:  ev.ThreadId,
		ContentId: ev.ContentId,
		CreatedAt: n.clock.now(),
	}
	if err := n.storage.SaveNotice(ctx, notice); err != nil {
		return fmt.Errorf("save notice for %s: %w", ev.Kind, err)
	}
	log.Debug("notice delivered", "kind", ev.Kind, "recipient", ev.RecipientId)
	return nil
}

func (n *Notice) List(ctx context.Context, tok *abort.Token, user domain.UserId) abort.Result[[]domain.Notice] {
	policy := n.policy.Named("notice.list").WithMessage("failed to get notices")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) ([]domain.Notice, error) {
		return n.storage.Notices(ctx, user)
	})
}

func (n *Notice) UnreadCount(ctx context.Context, tok *abort.Token, user domain.UserId) abort.Result[int] {
	policy := n.policy.Named("notice.unread_count").WithMessage("failed to count notices")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (int, error) {
		return n.storage.UnreadCount(ctx, user)
	})
}

func (n *Notice) MarkRead(ctx context.Context, tok *abort.Token, id domain.NoticeId, user domain.UserId) abort.Result[domain.NoticeId] {
	policy := n.policy.Named("notice.mark_read").WithMessage("failed to mark notice as read")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.NoticeId, error) {
		ok, err := n.storage.MarkRead(ctx, id, user)
		if err != nil {
			return "", hideNotFound(err, "notice")
		}
		if !ok {
			return "", notFound("notice")
		}
		return id, nil
	})
}

func (n *Notice) MarkAllRead(ctx context.Context, tok *abort.Token, user domain.UserId) abort.Result[int] {
	policy := n.policy.Named("notice.mark_all_read").WithMessage("failed to mark notices as read")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (int, error) {
		return n.storage.MarkAllRead(ctx, user)
	})
}
