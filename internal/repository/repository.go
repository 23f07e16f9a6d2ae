// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/recipe-api/internal/model"
)

// ListOptions controls pagination for list queries. Limit <= 0 means no
// limit — the full result set.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the durable identity store.
//
// Emails passed to Create and GetByEmail must already be normalized by the
// caller (the service layer owns normalization) — the store compares them
// byte-for-byte and enforces uniqueness on the stored value.
type UserRepository interface {
	// Create persists a new user. Returns a validation error when the
	// (normalized) email is already taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// RecipeRepository is the durable recipe store.
//
// Every read and mutation of a single row is keyed by (ownerID, id) in one
// lookup: a recipe owned by someone else is reported not-found, never
// forbidden. There is deliberately no way to fetch a recipe without naming
// its owner — that is the ownership-isolation invariant, enforced at the
// lowest layer so no caller can forget it.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	// GetByID returns the recipe only if it exists AND belongs to ownerID.
	GetByID(ctx context.Context, ownerID, id string) (*model.Recipe, error)
	// ListByOwner returns ownerID's recipes ordered by id descending
	// (most recently created first).
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Recipe, error)
	// Update writes the recipe back, matching on (recipe.UserID, recipe.ID).
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, ownerID, id string) error
}

// TokenRepository is the server-side bearer token store.
//
// At most one row per user: Create fails if the user already has a token
// (issuance is found-or-create at the service layer, so in practice callers
// check GetByUserID first).
type TokenRepository interface {
	Create(ctx context.Context, token *model.AuthToken) error
	// GetByKey resolves an inbound token value to its row. Returns the
	// not-found sentinel when the key is unknown.
	GetByKey(ctx context.Context, key string) (*model.AuthToken, error)
	GetByUserID(ctx context.Context, userID string) (*model.AuthToken, error)
}
