package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/repository"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewUserRepo(newTestPool(t))
	ctx := context.Background()

	u := createUser(t, repo, "a@x.com")

	got, err := repo.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewUserRepo(newTestPool(t))
	createUser(t, repo, "dup@x.com")

	err := repo.Create(context.Background(), &domain.User{
		ID:           uuid.New(),
		Email:        "DUP@x.com",
		FirstName:    "B",
		LastName:     "C",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepo_RefreshTokenAndImage(t *testing.T) {
	repo := NewUserRepo(newTestPool(t))
	ctx := context.Background()
	u := createUser(t, repo, "r@x.com")

	hash := "abc123"
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, &hash, &exp))

	got, err := repo.GetByRefreshTokenHash(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.RefreshTokenExpiresAt)
	assert.True(t, exp.Equal(*got.RefreshTokenExpiresAt))

	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, nil, nil))
	got, err = repo.GetByRefreshTokenHash(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, got)

	url := "https://blob/profileimages/p.png"
	require.NoError(t, repo.SetProfileImage(ctx, u.ID, &url))
	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, time.Now()))

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProfileImageURL)
	assert.Equal(t, url, *got.ProfileImageURL)
	assert.NotNil(t, got.LastLoginAt)
}

func TestUserRepo_RotateRefreshTokenOnce(t *testing.T) {
	repo := NewUserRepo(newTestPool(t))
	ctx := context.Background()
	u := createUser(t, repo, "rot@x.com")

	old := "old-hash"
	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, &old, &exp))

	require.NoError(t, repo.RotateRefreshToken(ctx, u.ID, old, "first", exp))
	assert.ErrorIs(t, repo.RotateRefreshToken(ctx, u.ID, old, "second", exp), repository.ErrStaleState)

	got, err := repo.GetByRefreshTokenHash(ctx, "first")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByRefreshTokenHash(ctx, "second")
	require.NoError(t, err)
	assert.Nil(t, got)
}
