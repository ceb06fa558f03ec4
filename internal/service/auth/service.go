package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/SP85691/ResearchSmithAI/internal/domain"
	"github.com/SP85691/ResearchSmithAI/internal/repository"
	"github.com/SP85691/ResearchSmithAI/pkg/config"
	"github.com/SP85691/ResearchSmithAI/pkg/crypto"
	"github.com/SP85691/ResearchSmithAI/pkg/token"
)

const minPasswordLength = 8

var (
	ErrUsernameTaken        = errors.New("auth: username already registered")
	ErrInvalidCredentials   = errors.New("auth: invalid username or password")
	ErrUnauthenticated      = errors.New("auth: not authenticated")
	ErrIncorrectOldPassword = errors.New("auth: old password is incorrect")
	ErrPasswordTooShort     = errors.New("auth: new password must be at least 8 characters long")
	ErrMissingFields        = errors.New("auth: username and password are required")
)

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     string
	Password  string
}

// ProfileInput carries the mutable profile fields. Username and email are
// immutable and intentionally not represented here.
type ProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a new account with a hashed password.
func (s Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown usernames
// and wrong passwords collapse into the same error so the response does not
// reveal which accounts exist.
func (s Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login failed", "username", username)
		return nil, "", ErrInvalidCredentials
	}
	signed, err := token.Issue(user.Username, s.cfg.TokenSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, signed, nil
}

// Authenticate resolves a session token to its user. Any failure along the
// chain collapses into ErrUnauthenticated.
func (s Service) Authenticate(ctx context.Context, signed string) (*domain.User, error) {
	subject, err := token.Verify(strings.TrimSpace(signed), s.cfg.TokenSecret)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetUserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile overwrites the mutable profile fields of the user.
func (s Service) UpdateProfile(ctx context.Context, user *domain.User, in ProfileInput) (*domain.User, error) {
	updated := *user
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.Phone = in.Phone
	updated.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdatePassword validates the old password and stores a new hash. The old
// password is checked before the length rule so a caller learns about a bad
// old password first.
func (s Service) UpdatePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) error {
	if err := crypto.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return ErrIncorrectOldPassword
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password updated", "user_id", user.ID)
	return nil
}

// TokenTTL exposes the configured session lifetime for cookie expiry.
func (s Service) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}
