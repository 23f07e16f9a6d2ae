package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// TokenStore implements repository.TokenRepository on the shared connection.
type TokenStore struct {
	conn *sql.DB
}

// compile-time check that *TokenStore implements repository.TokenRepository
var _ repository.TokenRepository = (*TokenStore)(nil)

// Create inserts a token row. The UNIQUE constraint on user_id means a
// second insert for the same user fails — issuance is found-or-create at the
// service layer, which falls back to a re-fetch when two first logins race
// into this insert.
func (s *TokenStore) Create(ctx context.Context, token *model.AuthToken) error {
	token.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO auth_tokens (key, user_id, created_at) VALUES (?, ?, ?)`,
		token.Key,
		token.UserID,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting auth token for user %s: %w", token.UserID, err)
	}

	return nil
}

// GetByKey resolves an inbound token value. This runs once per
// authenticated request; key is the primary key, so it's a single index
// lookup.
func (s *TokenStore) GetByKey(ctx context.Context, key string) (*model.AuthToken, error) {
	return s.getToken(ctx, `WHERE key = ?`, key)
}

// GetByUserID returns the user's live token, if any.
func (s *TokenStore) GetByUserID(ctx context.Context, userID string) (*model.AuthToken, error) {
	return s.getToken(ctx, `WHERE user_id = ?`, userID)
}

func (s *TokenStore) getToken(ctx context.Context, where, arg string) (*model.AuthToken, error) {
	var t model.AuthToken

	err := s.conn.QueryRowContext(ctx,
		`SELECT key, user_id, created_at FROM auth_tokens `+where,
		arg,
	).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("token", arg)
		}
		return nil, fmt.Errorf("sqlite: getting auth token: %w", err)
	}

	return &t, nil
}
