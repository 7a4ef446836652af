package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/models"
)

func setupRedisRepo(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRepository(client), mr
}

func testSession() *models.Session {
	now := time.Now()
	return &models.Session{
		Token:     uuid.NewString(),
		UserID:    "user-1",
		Role:      models.RoleStaff,
		Email:     "staff@example.com",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestRedisSessionRepository_RoundTrip(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()
	session := testSession()

	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Role, got.Role)

	require.NoError(t, repo.ClearSession(ctx, session.Token))
	got, err = repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSessionRepository_RejectsExpired(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	session := testSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)

	err := repo.SetSession(context.Background(), session)
	assert.Error(t, err)
}

func TestRedisSessionRepository_ExpiryHonored(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()
	session := testSession()
	session.ExpiresAt = time.Now().Add(time.Minute)

	require.NoError(t, repo.SetSession(ctx, session))
	mr.FastForward(2 * time.Minute)

	got, err := repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSessionRepository_RateLimit(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different caller has its own window.
	allowed, err = repo.CheckRateLimit(ctx, "login:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The window resets after it elapses.
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
