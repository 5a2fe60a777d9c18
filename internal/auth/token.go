package auth

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const MinSecretLength = 32

type TokenConfig struct {
	Secret    string
	Algorithm string
	Expiry    time.Duration
	// Leeway tolerates clock skew when checking exp. Zero means exact comparison.
	Leeway time.Duration
	// Issuer, when set, is stamped into every token as "iss" and required on verify.
	Issuer string
}

type TokenOption func(*jwtService)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *jwtService) {
		s.now = now
	}
}

type jwtService struct {
	secretKey []byte
	method    jwt.SigningMethod
	expiry    time.Duration
	issuer    string
	parser    *jwt.Parser
	now       func() time.Time
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (TokenService, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, &ConfigurationError{Field: "secret", Reason: fmt.Sprintf("must be at least %d characters", MinSecretLength)}
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, &ConfigurationError{Field: "algorithm", Reason: fmt.Sprintf("%q is not supported", cfg.Algorithm)}
	}
	if cfg.Expiry <= 0 {
		return nil, &ConfigurationError{Field: "expiry", Reason: "must be positive"}
	}
	if cfg.Leeway < 0 {
		return nil, &ConfigurationError{Field: "leeway", Reason: "must not be negative"}
	}

	s := &jwtService{
		secretKey: []byte(cfg.Secret),
		method:    method,
		expiry:    cfg.Expiry,
		issuer:    cfg.Issuer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
		jwt.WithStrictDecoding(),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	s.parser = jwt.NewParser(parserOpts...)

	return s, nil
}

// Issue signs claims together with iat and exp. Caller supplied iat/exp/iss are overwritten.
func (s *jwtService) Issue(claims Claims) (string, error) {
	if sub, _ := claims["sub"].(string); sub == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	mapClaims := make(jwt.MapClaims, len(claims)+3)
	maps.Copy(mapClaims, claims)
	mapClaims["iat"] = now.Unix()
	mapClaims["exp"] = now.Add(s.expiry).Unix()
	if s.issuer != "" {
		mapClaims["iss"] = s.issuer
	}

	token := jwt.NewWithClaims(s.method, mapClaims)
	return token.SignedString(s.secretKey)
}

// Verify returns ErrTokenExpired for a well-signed token past its exp and
// ErrTokenInvalid for everything else that fails.
func (s *jwtService) Verify(tokenString string) (*TokenPayload, error) {
	mapClaims := jwt.MapClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, mapClaims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}
	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}

	payload := &TokenPayload{
		Subject:   sub,
		ExpiresAt: exp.Time,
		Claims:    Claims(mapClaims),
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		payload.IssuedAt = iat.Time
	}
	return payload, nil
}
