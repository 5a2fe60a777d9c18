package auth

import (
	"errors"
	"fmt"
)

var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMissingSubject = errors.New("claims must contain a non-empty sub")
	ErrEmptyPassword  = errors.New("password must not be empty")
)

// ConfigurationError reports a token or hasher setting that cannot be used.
// It is only returned from constructors.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("auth configuration: %s %s", e.Field, e.Reason)
}

// HashingError wraps a failure of the underlying hashing primitive,
// e.g. the system entropy source.
type HashingError struct {
	Err error
}

func (e *HashingError) Error() string {
	return fmt.Sprintf("password hashing failed: %v", e.Err)
}

func (e *HashingError) Unwrap() error {
	return e.Err
}
