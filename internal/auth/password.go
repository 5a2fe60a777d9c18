package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const DefaultBcryptCost = 12

// bcrypt ignores input past 72 bytes; longer passwords are digested first.
const bcryptMaxInput = 72

type bcryptHasher struct {
	cost  int
	slots *semaphore.Weighted
}

// NewBcryptHasher returns a Hasher that runs at most maxConcurrent bcrypt
// computations at a time. maxConcurrent <= 0 means one per CPU.
func NewBcryptHasher(cost, maxConcurrent int) (Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, &ConfigurationError{Field: "bcrypt cost", Reason: fmt.Sprintf("must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	return &bcryptHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(maxConcurrent)),
	}, nil
}

func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	var hash []byte
	err := h.run(ctx, func() error {
		var err error
		hash, err = bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
		if err != nil {
			return &HashingError{Err: err}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports false for a wrong password and for a hash it cannot parse.
// The only errors are context cancellation or deadline.
func (h *bcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if password == "" || hash == "" {
		return false, nil
	}

	var match bool
	err := h.run(ctx, func() error {
		match = bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
		return nil
	})
	if err != nil {
		return false, err
	}
	return match, nil
}

// run executes fn on a worker slot. If ctx ends first the caller gets ctx.Err()
// and the slot is released once fn returns.
func (h *bcryptHasher) run(ctx context.Context, fn func() error) error {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer h.slots.Release(1)
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
