package lazy_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dfworx/auth-service/internal/pkg/lazy"
	"github.com/stretchr/testify/assert"
)

func TestLoader_InitializesOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	l := lazy.New(func() (*int, error) {
		calls.Add(1)
		v := 42
		return &v, nil
	})

	results := make([]*int, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.MustLoad()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestLoader_CachesError(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	l := lazy.New(func() (string, error) {
		calls.Add(1)
		return "", boom
	})

	_, err1 := l.Load()
	_, err2 := l.Load()

	assert.ErrorIs(t, err1, boom)
	assert.ErrorIs(t, err2, boom)
	assert.Equal(t, int32(1), calls.Load())
	assert.Panics(t, func() { l.MustLoad() })
}

func TestLoader_IfLoaded(t *testing.T) {
	l := lazy.New(func() (string, error) { return "client", nil })

	called := false
	l.IfLoaded(func(string) { called = true })
	assert.False(t, called, "must not trigger loading")

	l.MustLoad()
	l.IfLoaded(func(v string) {
		called = true
		assert.Equal(t, "client", v)
	})
	assert.True(t, called)
}
