package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	apperrors "github.com/yourusername/leaderboard-api/internal/pkg/errors"
	"github.com/yourusername/leaderboard-api/internal/websocket"
)

func TestValidateUserName(t *testing.T) {
	name, err := ValidateUserName("  Ann Lee\t")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", name)

	_, err = ValidateUserName("   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = ValidateUserName(strings.Repeat("я", entity.MaxUserNameLength+1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	name, err = ValidateUserName(strings.Repeat("я", entity.MaxUserNameLength))
	require.NoError(t, err)
	assert.Len(t, []rune(name), entity.MaxUserNameLength)
}

func TestUserService_AddUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepo)
	publisher := &recordingPublisher{}
	svc := NewUserService(repo, nil, publisher, nil)

	repo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Name == "Ann" && u.TotalPoints == 0
	})).Return(nil).Once()

	user, err := svc.AddUser(ctx, "  Ann ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, int64(0), user.TotalPoints)
	assert.Equal(t, []string{websocket.USER_ADDED}, publisher.Types())
	repo.AssertExpectations(t)
}

func TestUserService_AddUser_Empty(t *testing.T) {
	repo := new(MockUserRepo)
	svc := NewUserService(repo, nil, nil, nil)

	_, err := svc.AddUser(context.Background(), " \n ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_AddUser_DuplicateAfterTrim(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewUserService(store, nil, nil, nil)

	_, err := svc.AddUser(ctx, "Ann")
	require.NoError(t, err)

	_, err = svc.AddUser(ctx, "  Ann  ")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_ListUsers_SortedByName(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewUserService(store, nil, nil, nil)

	for _, name := range []string{"Zoe", "Ann", "Max"} {
		_, err := svc.AddUser(ctx, name)
		require.NoError(t, err)
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ann", users[0].Name)
	assert.Equal(t, "Zoe", users[2].Name)
}

func TestUserService_ListUsers_StoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepo)
	svc := NewUserService(repo, nil, nil, nil)

	repo.On("List", ctx).Return(nil, apperrors.ErrStoreUnavailable).Once()
	_, err := svc.ListUsers(ctx)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}
