package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *SessionStore {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set; skipping integration tests")
	}
	client, err := Connect(url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, time.Minute)
}

func TestSessionLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := store.Create(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.Equal(t, userID, got)

	require.NoError(t, store.Destroy(ctx, token))

	_, err = store.Get(ctx, token)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestGetUnknownToken(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestFlashIsOneShot(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, store.SetFlash(ctx, token, "Bought!"))
	require.Equal(t, "Bought!", store.PopFlash(ctx, token))
	require.Empty(t, store.PopFlash(ctx, token))
}
