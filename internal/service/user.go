// Package service contains the business logic layer.
//
// Layering follows the usual shape:
//
//	Handler (HTTP)   → parses requests, writes responses
//	Service (rules)  → validates, enforces ownership, orchestrates
//	Repository (DB)  → reads/writes rows
//
// Services take repository interfaces, not concrete types, so tests inject
// in-memory mocks and the HTTP layer never appears below this line.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 5

// UserService handles account lifecycle and credential authentication.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// NormalizeEmail lowercases the domain portion of an email address and
// trims surrounding whitespace. The local part is preserved as given:
//
//	TEST3@EXAMPLE.COM → TEST3@example.com
//	Test2@example.com → Test2@example.com
//
// Only the domain is case-insensitive per the mail RFCs; lowercasing the
// local part could merge accounts that a strict mail server distinguishes.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Register creates a new account with a hashed password.
//
// The email is normalized before the uniqueness check and storage; the
// plaintext password exists only long enough to hash. A duplicate email
// surfaces as a validation error (the store enforces uniqueness).
func (s *UserService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = NormalizeEmail(email)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "enter a valid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return user, nil
}

// CreateSuperuser is Register followed by forcing the staff and superuser
// flags. Used by the createsuperuser CLI, not exposed over HTTP.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.Register(ctx, email, password, "")
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/user: promoting superuser %s: %w", user.ID, err)
	}

	s.logger.Info("superuser created", slog.String("userID", user.ID))

	return user, nil
}

// Authenticate verifies an email/password pair and returns the matching
// active user.
//
// CONSTANT-SHAPE FAILURE:
// "No such user", "inactive user" and "wrong password" all return the same
// error value. Distinguishing them would let an attacker enumerate which
// emails have accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	failed := apperror.Unauthorized("unable to authenticate with provided credentials")

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, failed
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, failed
		}
		return nil, fmt.Errorf("service/user: looking up %s: %w", email, err)
	}

	if !user.IsActive {
		return nil, failed
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, failed
		}
		return nil, fmt.Errorf("service/user: verifying password: %w", err)
	}

	return user, nil
}

// GetByID returns the user for the given internal ID. Used by the profile
// endpoint after the middleware resolves the caller's token.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/user: user ID must not be empty")
	}
	return s.users.GetByID(ctx, id)
}

// ProfileUpdate carries the fields a user may change on their own account.
// nil means "not provided" — relevant for partial updates.
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// UpdateProfile applies a self-service profile update.
//
// partial=true (PATCH) touches only the provided fields. partial=false (PUT)
// requires email, password and name all present. A provided password is
// re-hashed; the stored hash is never returned either way.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate, partial bool) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !partial {
		if upd.Email == nil {
			return nil, apperror.ValidationFailed("email", "email is required")
		}
		if upd.Password == nil {
			return nil, apperror.ValidationFailed("password", "password is required")
		}
		if upd.Name == nil {
			return nil, apperror.ValidationFailed("name", "name is required")
		}
	}

	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		if email == "" {
			return nil, apperror.ValidationFailed("email", "email is required")
		}
		if !strings.Contains(email, "@") {
			return nil, apperror.ValidationFailed("email", "enter a valid email address")
		}
		user.Email = email
	}

	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}

	if upd.Password != nil {
		if len(*upd.Password) < MinPasswordLength {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		}
		hash, err := s.passwords.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("service/user: hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))

	return user, nil
}
