package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenPrimary points at a closed port so every call fails fast.
func brokenPrimary(t *testing.T) *RedisSessionRepository {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRepository(client)
}

func TestFailover_FallsBackWhenPrimaryDown(t *testing.T) {
	logger := zerolog.Nop()
	repo := NewFailoverSessionRepository(brokenPrimary(t), NewMemorySessionRepository(), &logger)
	ctx := context.Background()
	session := testSession()

	// The write fails on the primary and lands in memory.
	require.NoError(t, repo.SetSession(ctx, session))
	assert.True(t, repo.isDown.Load())

	// While the primary is marked down reads skip it entirely.
	got, err := repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.UserID, got.UserID)
}

func TestFailover_HealthyPrimaryIsUsed(t *testing.T) {
	logger := zerolog.Nop()
	primary, _ := setupRedisRepo(t)
	fallback := NewMemorySessionRepository()
	repo := NewFailoverSessionRepository(primary, fallback, &logger)
	ctx := context.Background()
	session := testSession()

	require.NoError(t, repo.SetSession(ctx, session))
	assert.False(t, repo.isDown.Load())

	// The fallback never saw the session.
	fromFallback, err := fallback.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, fromFallback)

	got, err := repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestFailover_RateLimitFallsBack(t *testing.T) {
	logger := zerolog.Nop()
	repo := NewFailoverSessionRepository(brokenPrimary(t), NewMemorySessionRepository(), &logger)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := repo.CheckRateLimit(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}
