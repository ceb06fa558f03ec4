package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/SP85691/ResearchSmithAI/internal/domain"
	"github.com/SP85691/ResearchSmithAI/internal/repository"
	"github.com/SP85691/ResearchSmithAI/pkg/config"
	"github.com/SP85691/ResearchSmithAI/pkg/crypto"
	"github.com/SP85691/ResearchSmithAI/pkg/token"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.APIConfig {
	return config.APIConfig{TokenSecret: "test-secret", TokenTTL: 30 * time.Minute}
}

type userRepoMock struct {
	createFunc             func(ctx context.Context, user *domain.User) error
	getByUsernameFunc      func(ctx context.Context, username string) (*domain.User, error)
	getByIDFunc            func(ctx context.Context, id string) (*domain.User, error)
	updateProfileFunc      func(ctx context.Context, user *domain.User) error
	updatePasswordHashFunc func(ctx context.Context, id string, hash []byte) error
}

func (m userRepoMock) CreateUser(ctx context.Context, user *domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m userRepoMock) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m userRepoMock) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m userRepoMock) UpdateProfile(ctx context.Context, user *domain.User) error {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, user)
	}
	return nil
}

func (m userRepoMock) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	if m.updatePasswordHashFunc != nil {
		return m.updatePasswordHashFunc(ctx, id, hash)
	}
	return nil
}

func mustHash(t *testing.T, plain string) []byte {
	t.Helper()
	hash, err := crypto.HashPassword(plain)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	var created *domain.User
	repo := userRepoMock{
		createFunc: func(_ context.Context, user *domain.User) error {
			created = user
			return nil
		},
	}
	svc := New(repo, newLogger(), testConfig())

	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Bob",
		LastName:  "Builder",
		Username:  "bob",
		Email:     "bob@example.com",
		Phone:     "555-0101",
		Password:  "secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatalf("expected user to be persisted")
	}
	if user.ID == "" {
		t.Fatalf("expected server-generated id")
	}
	if string(created.PasswordHash) == "secret123" {
		t.Fatalf("plaintext password stored")
	}
	if err := crypto.ComparePassword(created.PasswordHash, "secret123"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if err := crypto.ComparePassword(created.PasswordHash, "secret124"); err == nil {
		t.Fatalf("stored hash verifies wrong password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := userRepoMock{
		createFunc: func(_ context.Context, _ *domain.User) error {
			return repository.ErrConflict
		},
	}
	svc := New(repo, newLogger(), testConfig())

	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "secret123"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterRequiresUsernameAndPassword(t *testing.T) {
	svc := New(userRepoMock{}, newLogger(), testConfig())
	if _, err := svc.Register(context.Background(), RegisterInput{Username: "  ", Password: "secret123"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields for blank username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Username: "bob"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields for empty password, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	hash := mustHash(t, "secret123")
	repo := userRepoMock{
		getByUsernameFunc: func(_ context.Context, username string) (*domain.User, error) {
			if username != "bob" {
				return nil, repository.ErrNotFound
			}
			return &domain.User{ID: "user-1", Username: "bob", PasswordHash: hash}, nil
		},
	}
	svc := New(repo, newLogger(), testConfig())

	user, signed, err := svc.Login(context.Background(), "bob", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	subject, err := token.Verify(signed, "test-secret")
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if subject != "bob" {
		t.Fatalf("unexpected token subject: %q", subject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash := mustHash(t, "secret123")
	repo := userRepoMock{
		getByUsernameFunc: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Username: "bob", PasswordHash: hash}, nil
		},
	}
	svc := New(repo, newLogger(), testConfig())

	if _, _, err := svc.Login(context.Background(), "bob", "secret124"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserSameError(t *testing.T) {
	svc := New(userRepoMock{}, newLogger(), testConfig())
	if _, _, err := svc.Login(context.Background(), "ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateResolvesSubject(t *testing.T) {
	repo := userRepoMock{
		getByUsernameFunc: func(_ context.Context, username string) (*domain.User, error) {
			if username != "alice" {
				return nil, repository.ErrNotFound
			}
			return &domain.User{ID: "user-2", Username: "alice"}, nil
		},
	}
	svc := New(repo, newLogger(), testConfig())

	signed, err := token.Issue("alice", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user, err := svc.Authenticate(context.Background(), signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	svc := New(userRepoMock{}, newLogger(), testConfig())

	if _, err := svc.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for bad token, got %v", err)
	}

	expired, err := token.Issue("alice", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), expired); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}

	// Valid token whose subject no longer exists.
	orphan, err := token.Issue("deleted-user", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), orphan); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown subject, got %v", err)
	}
}

func TestUpdateProfileLeavesIdentityFieldsAlone(t *testing.T) {
	var stored *domain.User
	repo := userRepoMock{
		updateProfileFunc: func(_ context.Context, user *domain.User) error {
			stored = user
			return nil
		},
	}
	svc := New(repo, newLogger(), testConfig())

	current := &domain.User{
		ID:        "user-1",
		Username:  "bob",
		Email:     "bob@example.com",
		FirstName: "Bob",
		LastName:  "Builder",
		Phone:     "555-0101",
	}
	updated, err := svc.UpdateProfile(context.Background(), current, ProfileInput{
		FirstName: "Robert",
		LastName:  "Bilder",
		Phone:     "555-0202",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatalf("expected update to be persisted")
	}
	if stored.Username != "bob" || stored.Email != "bob@example.com" {
		t.Fatalf("identity fields mutated: %+v", stored)
	}
	if updated.FirstName != "Robert" || updated.LastName != "Bilder" || updated.Phone != "555-0202" {
		t.Fatalf("profile fields not applied: %+v", updated)
	}
}

func TestUpdateProfileUserVanished(t *testing.T) {
	repo := userRepoMock{
		updateProfileFunc: func(_ context.Context, _ *domain.User) error {
			return repository.ErrNotFound
		},
	}
	svc := New(repo, newLogger(), testConfig())

	_, err := svc.UpdateProfile(context.Background(), &domain.User{ID: "user-1"}, ProfileInput{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePasswordRejectsIncorrectOld(t *testing.T) {
	hash := mustHash(t, "secret123")
	svc := New(userRepoMock{}, newLogger(), testConfig())
	user := &domain.User{ID: "user-1", PasswordHash: hash}

	err := svc.UpdatePassword(context.Background(), user, "wrong-old", "longenough")
	if !errors.Is(err, ErrIncorrectOldPassword) {
		t.Fatalf("expected ErrIncorrectOldPassword, got %v", err)
	}
}

func TestUpdatePasswordRejectsShortNew(t *testing.T) {
	hash := mustHash(t, "secret123")
	svc := New(userRepoMock{}, newLogger(), testConfig())
	user := &domain.User{ID: "user-1", PasswordHash: hash}

	// Old password matches, new one is still too short.
	err := svc.UpdatePassword(context.Background(), user, "secret123", "short")
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestUpdatePasswordStoresNewHash(t *testing.T) {
	hash := mustHash(t, "secret123")
	var storedHash []byte
	repo := userRepoMock{
		updatePasswordHashFunc: func(_ context.Context, id string, hash []byte) error {
			if id != "user-1" {
				return repository.ErrNotFound
			}
			storedHash = hash
			return nil
		},
	}
	svc := New(repo, newLogger(), testConfig())
	user := &domain.User{ID: "user-1", PasswordHash: hash}

	if err := svc.UpdatePassword(context.Background(), user, "secret123", "brand-new-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storedHash == nil {
		t.Fatalf("expected new hash to be stored")
	}
	if err := crypto.ComparePassword(storedHash, "brand-new-pass"); err != nil {
		t.Fatalf("stored hash does not verify new password: %v", err)
	}
}
