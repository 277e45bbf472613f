package pg

import (
	"context"
	"testing"

	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	"github.com/BJS-kr/whatup/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetThread(t *testing.T) {
	ctx := context.Background()
	author := createUser(t, "author")
	data := createThread(t, author, func(d *domain.ThreadCreationData) { d.AutoAccept = true })

	thread, err := testStorage.GetThread(ctx, data.Id)
	require.NoError(t, err)
	assert.Equal(t, data.Title, thread.Title)
	assert.Equal(t, author.Id, thread.Author.Id)
	assert.Equal(t, "author", thread.Author.Nickname)
	assert.True(t, thread.AutoAccept)
	require.Len(t, thread.Contents, 1)

	seed := thread.Contents[0]
	assert.Equal(t, data.SeedId, seed.Id)
	assert.Equal(t, domain.ContentAccepted, seed.Status)
	assert.Equal(t, 1, seed.Order)
	assert.Nil(t, seed.ParentId)

	t.Run("missing and malformed ids", func(t *testing.T) {
		_, err := testStorage.GetThread(ctx, utils.NewId())
		assert.True(t, internal_errors.IsNotFound(err))
		_, err = testStorage.GetThread(ctx, "not-a-uuid")
		assert.True(t, internal_errors.IsNotFound(err))
	})
}

func TestUpdateAndDeleteThread(t *testing.T) {
	ctx := context.Background()
	author := createUser(t, "owner")
	stranger := createUser(t, "stranger")
	data := createThread(t, author)

	update := domain.ThreadUpdateData{Id: data.Id, Requester: stranger.Id, Description: "new", MaxLength: 10, AutoAccept: true}
	ok, err := testStorage.UpdateThread(ctx, update)
	require.NoError(t, err)
	assert.False(t, ok, "only the owner may update")

	update.Requester = author.Id
	ok, err = testStorage.UpdateThread(ctx, update)
	require.NoError(t, err)
	assert.True(t, ok)

	thread, err := testStorage.GetThread(ctx, data.Id)
	require.NoError(t, err)
	assert.Equal(t, "new", thread.Description)
	assert.Equal(t, 10, thread.MaxLength)
	assert.Equal(t, data.Title, thread.Title)

	ok, err = testStorage.DeleteThread(ctx, data.Id, stranger.Id)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = testStorage.DeleteThread(ctx, data.Id, author.Id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = testStorage.GetThread(ctx, data.Id)
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestListThreadsAndLikes(t *testing.T) {
	ctx := context.Background()
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")
	mine := createThread(t, alice)
	theirs := createThread(t, bob)

	like, err := testStorage.ToggleThreadLike(ctx, theirs.Id, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreadLike{ThreadId: theirs.Id, LikeCount: 1, Liked: true}, like)

	ids := func(threads []domain.ThreadMetadata) []domain.ThreadId {
		out := []domain.ThreadId{}
		for _, th := range threads {
			out = append(out, th.Id)
		}
		return out
	}

	my, err := testStorage.ListThreads(ctx, domain.ThreadFilter{Kind: domain.ThreadListMine, Viewer: alice.Id})
	require.NoError(t, err)
	assert.Equal(t, []domain.ThreadId{mine.Id}, ids(my))

	others, err := testStorage.ListThreads(ctx, domain.ThreadFilter{Kind: domain.ThreadListOthers, Viewer: alice.Id})
	require.NoError(t, err)
	assert.Contains(t, ids(others), theirs.Id)
	assert.NotContains(t, ids(others), mine.Id)

	liked, err := testStorage.ListThreads(ctx, domain.ThreadFilter{Kind: domain.ThreadListLiked, Viewer: alice.Id})
	require.NoError(t, err)
	assert.Equal(t, []domain.ThreadId{theirs.Id}, ids(liked))

	trending, err := testStorage.ListThreads(ctx, domain.ThreadFilter{Kind: domain.ThreadListTrending, Limit: 1})
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.GreaterOrEqual(t, trending[0].LikeCount, 1)

	unlike, err := testStorage.ToggleThreadLike(ctx, theirs.Id, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreadLike{ThreadId: theirs.Id, LikeCount: 0, Liked: false}, unlike)

	_, err = testStorage.ToggleThreadLike(ctx, utils.NewId(), alice.Id)
	assert.True(t, internal_errors.IsNotFound(err))
}
