package memory

import (
	"context"
	"sort"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
)

func (s *Storage) CreateThread(ctx context.Context, data domain.ThreadCreationData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.threads[data.Id]; ok {
		return internal_errors.ErrAlreadyExists
	}

	now := s.now()
	author := domain.Author{Id: data.Author.Id, Nickname: data.Author.Nickname}
	s.state.threads[data.Id] = domain.ThreadMetadata{
		Id:                           data.Id,
		Title:                        data.Title,
		Description:                  data.Description,
		MaxLength:                    data.MaxLength,
		AutoAccept:                   data.AutoAccept,
		AllowConsecutiveContribution: data.AllowConsecutiveContribution,
		Author:                       author,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
	s.state.contents[data.SeedId] = domain.Content{
		Id:        data.SeedId,
		ThreadId:  data.Id,
		Author:    author,
		Body:      data.InitialContent,
		Status:    domain.ContentAccepted,
		Order:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.state.threads[id]
	if !ok {
		return domain.Thread{}, internal_errors.ErrNotFound
	}
	contents := []domain.Content{}
	for _, c := range s.state.contents {
		if c.ThreadId == id {
			contents = append(contents, c)
		}
	}
	domain.SortByOrder(contents)
	return domain.Thread{ThreadMetadata: meta, Contents: contents}, nil
}

func (s *Storage) ListThreads(ctx context.Context, filter domain.ThreadFilter) ([]domain.ThreadMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads := []domain.ThreadMetadata{}
	for _, t := range s.state.threads {
		switch filter.Kind {
		case domain.ThreadListMine:
			if t.Author.Id != filter.Viewer {
				continue
			}
		case domain.ThreadListOthers:
			if t.Author.Id == filter.Viewer {
				continue
			}
		case domain.ThreadListLiked:
			if _, liked := s.state.likes[likeKey{t.Id, filter.Viewer}]; !liked {
				continue
			}
		}
		threads = append(threads, t)
	}

	if filter.Kind == domain.ThreadListTrending {
		sort.Slice(threads, func(i, j int) bool {
			if threads[i].LikeCount != threads[j].LikeCount {
				return threads[i].LikeCount > threads[j].LikeCount
			}
			return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
		})
	} else {
		sort.Slice(threads, func(i, j int) bool {
			return threads[i].CreatedAt.After(threads[j].CreatedAt)
		})
	}

	if filter.Limit > 0 && len(threads) > filter.Limit {
		threads = threads[:filter.Limit]
	}
	return threads, nil
}

func (s *Storage) UpdateThread(ctx context.Context, data domain.ThreadUpdateData) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.state.threads[data.Id]
	if !ok || !t.IsOwner(data.Requester) {
		return false, nil
	}
	t.Description = data.Description
	t.MaxLength = data.MaxLength
	t.AutoAccept = data.AutoAccept
	t.AllowConsecutiveContribution = data.AllowConsecutiveContribution
	t.UpdatedAt = s.now()
	s.state.threads[data.Id] = t
	return true, nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId, owner domain.UserId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.state.threads[id]
	if !ok || !t.IsOwner(owner) {
		return false, nil
	}
	delete(s.state.threads, id)
	for cid, c := range s.state.contents {
		if c.ThreadId == id {
			delete(s.state.contents, cid)
		}
	}
	for k := range s.state.likes {
		if k.thread == id {
			delete(s.state.likes, k)
		}
	}
	return true, nil
}

func (s *Storage) ToggleThreadLike(ctx context.Context, id domain.ThreadId, user domain.UserId) (domain.ThreadLike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.state.threads[id]
	if !ok {
		return domain.ThreadLike{}, internal_errors.ErrNotFound
	}

	key := likeKey{id, user}
	_, liked := s.state.likes[key]
	if liked {
		delete(s.state.likes, key)
		t.LikeCount--
	} else {
		s.state.likes[key] = struct{}{}
		t.LikeCount++
	}
	s.state.threads[id] = t
	return domain.ThreadLike{ThreadId: id, LikeCount: t.LikeCount, Liked: !liked}, nil
}
