package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dfworx/auth-service/internal/auth"
	"github.com/dfworx/auth-service/internal/revocation"
	"github.com/dfworx/auth-service/internal/user"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const TokenTypeBearer = "bearer"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTokenRevoked       = errors.New("token revoked")
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=100"`
	Name     string `validate:"required,min=1,max=255"`
}

var inputValidator = validator.New()

// Validate applies the same bounds the HTTP handler binds with.
func (in RegisterInput) Validate() error {
	if err := inputValidator.Struct(in); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service orchestrates the credential hasher, token service, user store and denylist.
// Inputs are expected to be validated by the caller.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*TokenResponse, error)
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*auth.TokenPayload, error)
	Me(ctx context.Context, userID uuid.UUID) (*user.User, error)
}

type service struct {
	users     user.Repository
	hasher    auth.Hasher
	tokens    auth.TokenService
	revoked   revocation.Store
	logger    *slog.Logger
	now       func() time.Time
	dummyHash string
}

func NewService(
	users user.Repository,
	hasher auth.Hasher,
	tokens auth.TokenService,
	revoked revocation.Store,
	logger *slog.Logger,
) (Service, error) {
	// Compared against when the email is unknown so that both paths cost one bcrypt run.
	dummyHash, err := hasher.Hash(context.Background(), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		revoked:   revoked,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*TokenResponse, error) {
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.New(in.Email, in.Name, hash, s.now())
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "login rejected", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return s.issue(u)
}

// Logout denylists the token until its own expiry.
func (s *service) Logout(ctx context.Context, token string) error {
	payload, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, revocation.Fingerprint(token), payload.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", "user_id", payload.Subject)
	return nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*auth.TokenPayload, error) {
	payload, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, revocation.Fingerprint(token))
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return payload, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *service) issue(u *user.User) (*TokenResponse, error) {
	token, err := s.tokens.Issue(auth.Claims{
		"sub":   u.ID.String(),
		"email": u.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}
