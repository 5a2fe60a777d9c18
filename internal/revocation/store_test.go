package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	fp := Fingerprint("header.payload.signature")

	require.NoError(t, store.Revoke(ctx, fp, now.Add(time.Hour)))

	revoked, err := store.IsRevoked(ctx, fp)
	require.NoError(t, err)
	assert.True(t, revoked)

	other, err := store.IsRevoked(ctx, Fingerprint("another.token.value"))
	require.NoError(t, err)
	assert.False(t, other)

	now = now.Add(time.Hour)
	revoked, err = store.IsRevoked(ctx, fp)
	require.NoError(t, err)
	assert.False(t, revoked, "entry is dropped once the token itself has expired")
}

func TestMemoryStore_IgnoresAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(func() time.Time { return now })

	require.NoError(t, store.Revoke(ctx, Fingerprint("t"), now.Add(-time.Second)))
	assert.Zero(t, store.(*memoryStore).Len())
}

func TestMemoryStore_Purge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })

	require.NoError(t, store.Revoke(ctx, Fingerprint("a"), now.Add(time.Minute)))
	require.NoError(t, store.Revoke(ctx, Fingerprint("b"), now.Add(3*time.Hour)))

	now = now.Add(2 * time.Hour)
	require.NoError(t, store.Revoke(ctx, Fingerprint("c"), now.Add(time.Hour)))

	assert.Equal(t, 2, store.(*memoryStore).Len())
}

func TestFingerprint(t *testing.T) {
	assert.Len(t, Fingerprint("x"), 64)
	assert.Equal(t, Fingerprint("x"), Fingerprint("x"))
	assert.NotEqual(t, Fingerprint("x"), Fingerprint("y"))
}

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
