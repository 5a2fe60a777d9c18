package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Store remembers revoked tokens until they would have expired anyway.
type Store interface {
	Revoke(ctx context.Context, fingerprint string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, fingerprint string) (bool, error)
}

// Fingerprint identifies a token without keeping the token itself.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type memoryStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	now       func() time.Time
	lastPurge time.Time
	purgeIdle time.Duration
}

func NewMemoryStore(now func() time.Time) Store {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		entries:   make(map[string]time.Time),
		now:       now,
		purgeIdle: time.Minute,
	}
}

func (m *memoryStore) Revoke(_ context.Context, fingerprint string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.purgeUnsafe(now)
	if !expiresAt.After(now) {
		return nil
	}
	if current, ok := m.entries[fingerprint]; !ok || expiresAt.After(current) {
		m.entries[fingerprint] = expiresAt
	}
	return nil
}

func (m *memoryStore) IsRevoked(_ context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.entries[fingerprint]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(m.now()) {
		delete(m.entries, fingerprint)
		return false, nil
	}
	return true, nil
}

// purgeUnsafe drops expired entries at most once per purgeIdle.
func (m *memoryStore) purgeUnsafe(now time.Time) {
	if now.Sub(m.lastPurge) < m.purgeIdle {
		return
	}
	m.lastPurge = now
	for fp, expiresAt := range m.entries {
		if !expiresAt.After(now) {
			delete(m.entries, fp)
		}
	}
}
