package service

import (
	"context"
	"strings"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/markdown"
	"github.com/BJS-kr/whatup/shared/utils"
)

type ThreadService interface {
	Create(ctx context.Context, tok *abort.Token, data domain.ThreadCreationData) abort.Result[domain.ThreadId]
	Get(ctx context.Context, tok *abort.Token, id domain.ThreadId) abort.Result[domain.Thread]
	List(ctx context.Context, tok *abort.Token, filter domain.ThreadFilter) abort.Result[[]domain.ThreadMetadata]
	Update(ctx context.Context, tok *abort.Token, data domain.ThreadUpdateData) abort.Result[domain.Thread]
	Delete(ctx context.Context, tok *abort.Token, id domain.ThreadId, requester domain.UserId) abort.Result[domain.ThreadId]
	ToggleLike(ctx context.Context, tok *abort.Token, id domain.ThreadId, user domain.UserId) abort.Result[domain.ThreadLike]
	Story(ctx context.Context, tok *abort.Token, id domain.ThreadId) abort.Result[Story]
}

// Story is the accepted text of a thread.
type Story struct {
	ThreadId domain.ThreadId    `json:"thread_id"`
	Title    domain.ThreadTitle `json:"title"`
	Text     string             `json:"text"`
	HTML     string             `json:"html"`
}

type Thread struct {
	storage       storage.ThreadStorage
	renderer      *markdown.StoryRenderer
	policy        abort.Policy
	trendingLimit int
}

func NewThread(storage storage.ThreadStorage, renderer *markdown.StoryRenderer, policy abort.Policy, trendingLimit int) *Thread {
	return &Thread{storage: storage, renderer: renderer, policy: policy, trendingLimit: trendingLimit}
}

func validateSettings(maxLength int) error {
	if maxLength <= 0 {
		return abort.Rejection("max length must be positive")
	}
	return nil
}

// Create stores the thread with its initial content as the first accepted entry.
func (t *Thread) Create(ctx context.Context, tok *abort.Token, data domain.ThreadCreationData) abort.Result[domain.ThreadId] {
	data.Title = strings.TrimSpace(data.Title)
	data.Id = utils.NewId()
	data.SeedId = utils.NewId()

	policy := t.policy.Named("thread.create").WithMessage("failed to create thread")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.ThreadId, error) {
		if data.Title == "" {
			return "", abort.Rejection("title is empty")
		}
		if err := validateSettings(data.MaxLength); err != nil {
			return "", err
		}
		if err := checkBody(data.InitialContent, data.MaxLength); err != nil {
			return "", err
		}
		if err := t.storage.CreateThread(ctx, data); err != nil {
			return "", err
		}
		return data.Id, nil
	})
}

func (t *Thread) Get(ctx context.Context, tok *abort.Token, id domain.ThreadId) abort.Result[domain.Thread] {
	policy := t.policy.Named("thread.get").WithMessage("failed to get thread")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.Thread, error) {
		thread, err := t.storage.GetThread(ctx, id)
		if err != nil {
			return domain.Thread{}, hideNotFound(err, "thread")
		}
		return thread, nil
	})
}

func (t *Thread) List(ctx context.Context, tok *abort.Token, filter domain.ThreadFilter) abort.Result[[]domain.ThreadMetadata] {
	if filter.Kind == domain.ThreadListTrending && filter.Limit <= 0 {
		filter.Limit = t.trendingLimit
	}

	policy := t.policy.Named("thread.list").WithMessage("failed to list threads")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) ([]domain.ThreadMetadata, error) {
		return t.storage.ListThreads(ctx, filter)
	})
}

// Update changes the mutable settings. Only the owner may do it.
func (t *Thread) Update(ctx context.Context, tok *abort.Token, data domain.ThreadUpdateData) abort.Result[domain.Thread] {
	policy := t.policy.Named("thread.update").WithMessage("failed to update thread")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.Thread, error) {
		if err := validateSettings(data.MaxLength); err != nil {
			return domain.Thread{}, err
		}
		updated, err := t.storage.UpdateThread(ctx, data)
		if err != nil {
			return domain.Thread{}, hideMissing(err)
		}
		if !updated {
			return domain.Thread{}, notFoundOrUnauthorized()
		}
		thread, err := t.storage.GetThread(ctx, data.Id)
		return thread, hideMissing(err)
	})
}

func (t *Thread) Delete(ctx context.Context, tok *abort.Token, id domain.ThreadId, requester domain.UserId) abort.Result[domain.ThreadId] {
	policy := t.policy.Named("thread.delete").WithMessage("failed to delete thread")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.ThreadId, error) {
		deleted, err := t.storage.DeleteThread(ctx, id, requester)
		if err != nil {
			return "", hideMissing(err)
		}
		if !deleted {
			return "", notFoundOrUnauthorized()
		}
		return id, nil
	})
}

// ToggleLike likes the thread, or removes the like when user already liked it.
func (t *Thread) ToggleLike(ctx context.Context, tok *abort.Token, id domain.ThreadId, user domain.UserId) abort.Result[domain.ThreadLike] {
	policy := t.policy.Named("thread.like").WithMessage("failed to like thread")
	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.ThreadLike, error) {
		like, err := t.storage.ToggleThreadLike(ctx, id, user)
		if err != nil {
			return domain.ThreadLike{}, hideNotFound(err, "thread")
		}
		return like, nil
	})
}

// Story joins the accepted contents of a thread in order.
func (t *Thread) Story(ctx context.Context, tok *abort.Token, id domain.ThreadId) abort.Result[Story] {
	thread := t.Get(ctx, tok, id)
	return abort.Then(thread, func(thread domain.Thread) abort.Result[Story] {
		policy := t.policy.Named("thread.story").WithMessage("failed to render story").WithRetries(0)
		return abort.Try(ctx, tok, policy, func(ctx context.Context) (Story, error) {
			accepted := thread.Accepted()
			html, err := t.renderer.HTML(accepted)
			if err != nil {
				return Story{}, err
			}
			return Story{
				ThreadId: thread.Id,
				Title:    thread.Title,
				Text:     t.renderer.Text(accepted),
				HTML:     html,
			}, nil
		})
	})
}
