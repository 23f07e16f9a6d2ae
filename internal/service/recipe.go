package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
	"github.com/shopspring/decimal"
)

// Validation limits for recipe fields.
const (
	MaxTitleLength = 255
	MaxLinkLength  = 255
	// MaxPrice mirrors a 5-digit, 2-decimal money column: 999.99.
	maxPriceDigits = 3
)

// RecipeService is the ownership-isolation and CRUD-authorization layer in
// front of the recipe store.
//
// Every operation takes the caller's user ID as an explicit first parameter
// — there is no ambient "current user" to read from. The service forwards
// that ID into the repository, where each lookup is keyed by (owner, id), so
// a recipe the caller doesn't own behaves exactly like one that doesn't
// exist. The service never performs a separate "may the caller do this?"
// check: the authorization check and the existence check are the same query.
type RecipeService struct {
	repo   repository.RecipeRepository
	logger *slog.Logger
}

// NewRecipeService creates a RecipeService.
func NewRecipeService(repo repository.RecipeRepository, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		repo:   repo,
		logger: logger,
	}
}

// RecipeInput is a complete set of recipe fields, used for create.
type RecipeInput struct {
	Title       string
	Description string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
}

// RecipePatch is a partial set of recipe fields, used for update.
// nil means "not provided". There is deliberately no owner field: the
// stored owner is not changeable through any update path.
type RecipePatch struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
}

// List returns the caller's recipes, most recently created first.
// Recipes owned by other users are filtered out in the store query; they
// contribute nothing to the result, not even a count.
func (s *RecipeService) List(ctx context.Context, callerID string, limit, offset int) ([]model.Recipe, error) {
	if callerID == "" {
		return nil, fmt.Errorf("service/recipe: caller ID must not be empty")
	}

	recipes, err := s.repo.ListByOwner(ctx, callerID, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list recipes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	return recipes, nil
}

// GetByID returns one of the caller's recipes. A recipe owned by another
// user fails with NotFound — not Forbidden — so existence can't be probed.
func (s *RecipeService) GetByID(ctx context.Context, callerID, id string) (*model.Recipe, error) {
	if callerID == "" {
		return nil, fmt.Errorf("service/recipe: caller ID must not be empty")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "recipe ID is required")
	}

	return s.repo.GetByID(ctx, callerID, id)
}

// Create validates and saves a new recipe owned by the caller. Whatever
// owner a client may have tried to smuggle into the payload never reaches
// this method — the owner is the authenticated caller, full stop.
func (s *RecipeService) Create(ctx context.Context, callerID string, in RecipeInput) (*model.Recipe, error) {
	if callerID == "" {
		return nil, fmt.Errorf("service/recipe: caller ID must not be empty")
	}

	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateTimeMinutes(in.TimeMinutes); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if len(in.Link) > MaxLinkLength {
		return nil, apperror.ValidationFailed("link",
			fmt.Sprintf("link must be %d characters or less", MaxLinkLength))
	}

	recipe := &model.Recipe{
		UserID:      callerID,
		Title:       title,
		Description: in.Description,
		TimeMinutes: in.TimeMinutes,
		Price:       in.Price,
		Link:        in.Link,
	}

	if err := s.repo.Create(ctx, recipe); err != nil {
		s.logger.Error("failed to create recipe",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	s.logger.Info("recipe created",
		slog.String("id", recipe.ID),
		slog.String("userID", callerID),
	)

	return recipe, nil
}

// Update applies a partial or full update to one of the caller's recipes.
//
// partial=true touches only the provided fields. partial=false requires
// title, time_minutes and price, and resets absent optional fields
// (description, link) to their defaults.
//
// Ownership mismatch fails with NotFound via the same (owner, id) fetch as
// GetByID. The owner itself is not updatable: RecipePatch has no owner
// field, and the store's UPDATE never touches user_id.
func (s *RecipeService) Update(ctx context.Context, callerID, id string, patch RecipePatch, partial bool) (*model.Recipe, error) {
	if callerID == "" {
		return nil, fmt.Errorf("service/recipe: caller ID must not be empty")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "recipe ID is required")
	}

	recipe, err := s.repo.GetByID(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if !partial {
		if patch.Title == nil {
			return nil, apperror.ValidationFailed("title", "title is required")
		}
		if patch.TimeMinutes == nil {
			return nil, apperror.ValidationFailed("time_minutes", "time_minutes is required")
		}
		if patch.Price == nil {
			return nil, apperror.ValidationFailed("price", "price is required")
		}
		// Full update: unspecified optional fields reset to default.
		if patch.Description == nil {
			empty := ""
			patch.Description = &empty
		}
		if patch.Link == nil {
			empty := ""
			patch.Link = &empty
		}
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		recipe.Title = title
	}
	if patch.TimeMinutes != nil {
		if err := validateTimeMinutes(*patch.TimeMinutes); err != nil {
			return nil, err
		}
		recipe.TimeMinutes = *patch.TimeMinutes
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		recipe.Price = *patch.Price
	}
	if patch.Description != nil {
		recipe.Description = *patch.Description
	}
	if patch.Link != nil {
		if len(*patch.Link) > MaxLinkLength {
			return nil, apperror.ValidationFailed("link",
				fmt.Sprintf("link must be %d characters or less", MaxLinkLength))
		}
		recipe.Link = *patch.Link
	}

	if err := s.repo.Update(ctx, recipe); err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated",
		slog.String("id", recipe.ID),
		slog.String("userID", callerID),
	)

	return recipe, nil
}

// Delete removes one of the caller's recipes permanently. Ownership
// mismatch or absence both fail with NotFound; the row is untouched.
func (s *RecipeService) Delete(ctx context.Context, callerID, id string) error {
	if callerID == "" {
		return fmt.Errorf("service/recipe: caller ID must not be empty")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "recipe ID is required")
	}

	if err := s.repo.Delete(ctx, callerID, id); err != nil {
		return err
	}

	s.logger.Info("recipe deleted",
		slog.String("id", id),
		slog.String("userID", callerID),
	)
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return nil
}

func validateTimeMinutes(minutes int) error {
	if minutes < 0 {
		return apperror.ValidationFailed("time_minutes", "time_minutes must not be negative")
	}
	return nil
}

// validatePrice enforces the exact-decimal contract: non-negative, at most
// 2 fractional digits, at most 3 integer digits (a 5-digit money column).
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperror.ValidationFailed("price", "price must not be negative")
	}
	if price.Exponent() < -2 {
		return apperror.ValidationFailed("price", "price must have at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(decimal.New(1, maxPriceDigits)) {
		return apperror.ValidationFailed("price", "price must be less than 1000")
	}
	return nil
}
