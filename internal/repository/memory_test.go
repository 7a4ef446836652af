package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository_RoundTrip(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	session := testSession()

	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.UserID, got.UserID)

	require.NoError(t, repo.ClearSession(ctx, session.Token))
	got, err = repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionRepository_ExpiresOnRead(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	session := testSession()
	session.ExpiresAt = time.Now().Add(-time.Second)

	require.NoError(t, repo.SetSession(ctx, session))

	got, err := repo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionRepository_RateLimitWindow(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "caller", 5, 50*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := repo.CheckRateLimit(ctx, "caller", 5, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)
	allowed, err = repo.CheckRateLimit(ctx, "caller", 5, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}
