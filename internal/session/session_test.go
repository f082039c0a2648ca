package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), "secret", time.Hour)

	token, s, err := m.Start(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(42), s.UserID)

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, int64(42), got.UserID)

	require.NoError(t, m.End(ctx, token))
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Ending twice is harmless.
	assert.NoError(t, m.End(ctx, token))
}

func TestResolveRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	issuer := NewManager(store, "one", time.Hour)
	verifier := NewManager(store, "two", time.Hour)

	token, _, err := issuer.Start(ctx, 1)
	require.NoError(t, err)

	_, err = verifier.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), "secret", time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, _, err := m.Start(ctx, 7)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsGarbage(t *testing.T) {
	m := NewManager(NewMemoryStore(), "secret", time.Hour)
	_, err := m.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, m.End(context.Background(), "not-a-token"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, &Session{ID: "a", UserID: 1}, 10*time.Millisecond))

	_, err := store.Load(ctx, "a")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
