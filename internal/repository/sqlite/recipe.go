package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
	"github.com/shopspring/decimal"
)

// RecipeStore implements repository.RecipeRepository on the shared
// connection.
type RecipeStore struct {
	conn *sql.DB
}

// compile-time check that *RecipeStore implements repository.RecipeRepository
var _ repository.RecipeRepository = (*RecipeStore)(nil)

// OWNERSHIP AS NOT-FOUND:
// Every single-row query below matches on BOTH id and user_id in one WHERE
// clause. A recipe that exists but belongs to someone else produces
// sql.ErrNoRows exactly like a recipe that doesn't exist, so the two cases
// are indistinguishable all the way up the stack. This is one lookup, not an
// existence check followed by an ownership check — there is no window where
// the two could disagree.

// Create inserts a new recipe. The caller must have set UserID (the service
// forces it to the authenticated caller). ID and timestamps are generated
// here; xid values sort by creation time, so ORDER BY id DESC lists newest
// first.
func (s *RecipeStore) Create(ctx context.Context, recipe *model.Recipe) error {
	recipe.ID = xid.New().String()

	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO recipes (id, user_id, title, description, time_minutes, price, link, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.Description,
		recipe.TimeMinutes,
		recipe.Price.String(),
		recipe.Link,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating recipe: %w", err)
	}

	return nil
}

// GetByID retrieves a single recipe owned by ownerID.
// Returns apperror.ErrNotFound when the id is absent or owned by another user.
func (s *RecipeStore) GetByID(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	var (
		r        model.Recipe
		priceStr string
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, time_minutes, price, link, created_at, updated_at
		 FROM recipes
		 WHERE id = ? AND user_id = ?`,
		id, ownerID,
	).Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Description,
		&r.TimeMinutes,
		&priceStr,
		&r.Link,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe %s: %w", id, err)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parsing stored price %q: %w", priceStr, err)
	}
	r.Price = price

	return &r, nil
}

// ListByOwner returns ownerID's recipes, id descending. Rows belonging to
// other owners never enter the result set — the filter is in the SQL, so
// there is no count or total to leak either.
func (s *RecipeStore) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Recipe, error) {
	// Limit <= 0 means "all rows" — the listing contract returns the
	// caller's complete collection unless a caller asks for a page. SQLite
	// reads LIMIT -1 as unlimited.
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, user_id, title, description, time_minutes, price, link, created_at, updated_at
		 FROM recipes
		 WHERE user_id = ?
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?`,
		ownerID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]model.Recipe, 0)

	for rows.Next() {
		var (
			r        model.Recipe
			priceStr string
		)
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Title, &r.Description,
			&r.TimeMinutes, &priceStr, &r.Link,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recipe row: %w", err)
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing stored price %q: %w", priceStr, err)
		}
		r.Price = price

		recipes = append(recipes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipes: %w", err)
	}

	return recipes, nil
}

// Update writes back a recipe's mutable fields, matching on (id, user_id).
// RowsAffected == 0 means absent or not owned — NotFound either way.
// user_id itself is never in the SET clause; the stored owner cannot change
// through this path.
func (s *RecipeStore) Update(ctx context.Context, recipe *model.Recipe) error {
	recipe.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE recipes
		 SET title = ?, description = ?, time_minutes = ?, price = ?, link = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		recipe.Title,
		recipe.Description,
		recipe.TimeMinutes,
		recipe.Price.String(),
		recipe.Link,
		recipe.UpdatedAt,
		recipe.ID,
		recipe.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating recipe %s: %w", recipe.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("recipe", recipe.ID)
	}

	return nil
}

// Delete removes ownerID's recipe permanently. Hard delete, no tombstone.
func (s *RecipeStore) Delete(ctx context.Context, ownerID, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recipe %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("recipe", id)
	}

	return nil
}
