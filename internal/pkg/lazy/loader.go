package lazy

import (
	"fmt"
	"sync"
)

// Loader initializes a value once, on first use, and hands the same value
// (or the same error) to every caller afterwards.
type Loader[T any] interface {
	MustLoad() T
	Load() (T, error)
	IfLoaded(func(T))
}

type loader[T any] struct {
	provider func() (T, error)
	once     sync.Once
	mu       sync.RWMutex
	loaded   bool
	value    T
	err      error
}

func New[T any](provider func() (T, error)) Loader[T] {
	return &loader[T]{provider: provider}
}

func (l *loader[T]) MustLoad() T {
	value, err := l.Load()
	if err != nil {
		panic(err)
	}
	return value
}

func (l *loader[T]) Load() (T, error) {
	l.once.Do(func() {
		value, err := l.provider()

		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.err = fmt.Errorf("load value of %T: %w", l.value, err)
			return
		}
		l.loaded = true
		l.value = value
	})

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.err
}

// IfLoaded calls f only when a value has been loaded successfully; it never triggers loading.
func (l *loader[T]) IfLoaded(f func(T)) {
	l.mu.RLock()
	loaded, value := l.loaded, l.value
	l.mu.RUnlock()

	if loaded {
		f(value)
	}
}
