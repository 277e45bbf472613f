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

func TestSaveUser(t *testing.T) {
	ctx := context.Background()
	u := domain.User{Id: utils.NewId(), Email: "saveuser@example.com", Nickname: "saver", PassHash: "hash"}

	require.NoError(t, testStorage.SaveUser(ctx, u), "SaveUser should not return an error")

	err := testStorage.SaveUser(ctx, domain.User{Id: utils.NewId(), Email: u.Email, Nickname: "again", PassHash: "hash"})
	assert.True(t, internal_errors.IsAlreadyExists(err), "Saving the same email twice should conflict, got %v", err)
}

func TestUserByEmail(t *testing.T) {
	ctx := context.Background()
	u := domain.User{Id: utils.NewId(), Email: "lookup@example.com", Nickname: "lookup", PassHash: "secret-hash"}
	require.NoError(t, testStorage.SaveUser(ctx, u))

	got, err := testStorage.UserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.Id, got.Id)
	assert.Equal(t, "lookup", got.Nickname)
	assert.Equal(t, "secret-hash", got.PassHash)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = testStorage.UserByEmail(ctx, "nonexistent@example.com")
	assert.True(t, internal_errors.IsNotFound(err), "Expected not found, got %v", err)
}
