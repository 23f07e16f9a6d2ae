package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// tokenBytes is the amount of random data behind each token key.
// 20 bytes hex-encoded gives a 40-character key with 160 bits of entropy —
// unguessable, and short enough to paste into a curl header.
const tokenBytes = 20

// TokenService mints and resolves opaque bearer tokens.
//
// WHY OPAQUE TOKENS AND NOT JWT?
// The token carries no claims. Its only meaning is the database row that
// maps it to a user, so:
//   - resolving a token is one indexed lookup (no signature verification,
//     no clock skew, no algorithm pinning)
//   - revocation is deleting a row, effective immediately
//   - a leaked token reveals nothing about who it belongs to
//
// The trade is one store read per request, which this app pays gladly —
// every authenticated request is about to hit the same store anyway.
//
// ISSUANCE IS FOUND-OR-CREATE:
// At most one live token exists per user. Issue returns the existing key if
// the user already has one; logging in twice does not rotate the token.
// (Rotate-on-reissue is an equally defensible policy — this repo implements
// the idempotent one and tests it as such.)
type TokenService struct {
	tokens repository.TokenRepository
}

// NewTokenService creates a TokenService backed by the given token store.
func NewTokenService(tokens repository.TokenRepository) *TokenService {
	return &TokenService{tokens: tokens}
}

// Issue returns the user's bearer token, minting one on first use.
func (s *TokenService) Issue(ctx context.Context, userID string) (*model.AuthToken, error) {
	if userID == "" {
		return nil, fmt.Errorf("auth: user ID must not be empty")
	}

	existing, err := s.tokens.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("auth: looking up token for user %s: %w", userID, err)
	}

	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	token := &model.AuthToken{
		Key:    key,
		UserID: userID,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		// Two first logins can race here: both miss the lookup, one insert
		// wins, the other trips the one-token-per-user constraint. The row
		// exists now either way, so a re-fetch turns the loser into the
		// found path instead of failing a valid login.
		if existing, lookupErr := s.tokens.GetByUserID(ctx, userID); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("auth: storing token for user %s: %w", userID, err)
	}

	return token, nil
}

// Resolve maps an inbound token key back to the user ID it authenticates.
// An unknown key yields the constant-shape unauthorized error; the caller
// learns nothing about whether the key was ever valid.
func (s *TokenService) Resolve(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apperror.Unauthorized("valid authentication required")
	}

	token, err := s.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("valid authentication required")
		}
		return "", fmt.Errorf("auth: resolving token: %w", err)
	}

	return token.UserID, nil
}

// generateKey produces a hex-encoded cryptographically random token value.
func generateKey() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating token bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
