package auth

import (
	"context"
	"time"
)

// Claims is the caller-supplied payload embedded in an access token.
// "sub" is required; everything else is carried through untouched.
type Claims map[string]any

// TokenPayload is the verified content of an access token.
type TokenPayload struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Claims    Claims
}

type TokenService interface {
	Issue(claims Claims) (string, error)
	Verify(tokenString string) (*TokenPayload, error)
}

type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}
