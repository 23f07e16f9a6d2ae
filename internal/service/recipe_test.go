package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

// mockRecipeRepo mimics the store's (owner, id) keying: every single-row
// operation misses unless both match.
type mockRecipeRepo struct {
	recipes map[string]*model.Recipe
	nextID  int
}

var _ repository.RecipeRepository = (*mockRecipeRepo)(nil)

func newMockRecipeRepo() *mockRecipeRepo {
	return &mockRecipeRepo{recipes: make(map[string]*model.Recipe)}
}

func (m *mockRecipeRepo) Create(_ context.Context, recipe *model.Recipe) error {
	m.nextID++
	recipe.ID = fmt.Sprintf("recipe-%03d", m.nextID)
	cp := *recipe
	m.recipes[recipe.ID] = &cp
	return nil
}

func (m *mockRecipeRepo) GetByID(_ context.Context, ownerID, id string) (*model.Recipe, error) {
	recipe, ok := m.recipes[id]
	if !ok || recipe.UserID != ownerID {
		return nil, apperror.NotFound("recipe", id)
	}
	cp := *recipe
	return &cp, nil
}

func (m *mockRecipeRepo) ListByOwner(_ context.Context, ownerID string, _ repository.ListOptions) ([]model.Recipe, error) {
	var out []model.Recipe
	for _, r := range m.recipes {
		if r.UserID == ownerID {
			out = append(out, *r)
		}
	}
	// Newest first, as the store orders by id descending.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockRecipeRepo) Update(_ context.Context, recipe *model.Recipe) error {
	old, ok := m.recipes[recipe.ID]
	if !ok || old.UserID != recipe.UserID {
		return apperror.NotFound("recipe", recipe.ID)
	}
	cp := *recipe
	m.recipes[recipe.ID] = &cp
	return nil
}

func (m *mockRecipeRepo) Delete(_ context.Context, ownerID, id string) error {
	old, ok := m.recipes[id]
	if !ok || old.UserID != ownerID {
		return apperror.NotFound("recipe", id)
	}
	delete(m.recipes, id)
	return nil
}

func newTestRecipeService() (*RecipeService, *mockRecipeRepo) {
	repo := newMockRecipeRepo()
	return NewRecipeService(repo, testLogger()), repo
}

func sampleInput() RecipeInput {
	return RecipeInput{
		Title:       "Sample recipe",
		Description: "Tasty",
		TimeMinutes: 30,
		Price:       decimal.RequireFromString("5.99"),
		Link:        "http://example.com/recipe.pdf",
	}
}

func TestRecipeServiceCreate(t *testing.T) {
	svc, _ := newTestRecipeService()

	recipe, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if recipe.UserID != "user-a" {
		t.Errorf("UserID = %q, the owner must be the caller", recipe.UserID)
	}
	if recipe.Title != "Sample recipe" {
		t.Errorf("Title = %q, want %q", recipe.Title, "Sample recipe")
	}
	if !recipe.Price.Equal(decimal.RequireFromString("5.99")) {
		t.Errorf("Price = %s, want 5.99", recipe.Price)
	}
}

func TestRecipeServiceCreate_Validation(t *testing.T) {
	svc, repo := newTestRecipeService()

	tests := []struct {
		name   string
		mutate func(*RecipeInput)
	}{
		{"empty title", func(in *RecipeInput) { in.Title = "  " }},
		{"negative time", func(in *RecipeInput) { in.TimeMinutes = -1 }},
		{"negative price", func(in *RecipeInput) { in.Price = decimal.RequireFromString("-1.00") }},
		{"three decimal places", func(in *RecipeInput) { in.Price = decimal.RequireFromString("5.999") }},
		{"price too large", func(in *RecipeInput) { in.Price = decimal.RequireFromString("1000.00") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), "user-a", in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}

	if len(repo.recipes) != 0 {
		t.Error("no recipe may be persisted on validation failure")
	}
}

func TestRecipeServiceCreate_MaxPriceBoundary(t *testing.T) {
	svc, _ := newTestRecipeService()

	in := sampleInput()
	in.Price = decimal.RequireFromString("999.99")
	if _, err := svc.Create(context.Background(), "user-a", in); err != nil {
		t.Errorf("Create() with price 999.99 error = %v, want nil", err)
	}
}

func TestRecipeServiceGetByID_OwnerIsolation(t *testing.T) {
	svc, _ := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.GetByID(context.Background(), "user-a", created.ID); err != nil {
		t.Errorf("owner GetByID() error = %v", err)
	}

	_, err = svc.GetByID(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("non-owner GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestRecipeServiceList_OnlyCallers(t *testing.T) {
	svc, _ := newTestRecipeService()

	inA := sampleInput()
	inA.Title = "A's recipe"
	if _, err := svc.Create(context.Background(), "user-a", inA); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	inB := sampleInput()
	inB.Title = "B's recipe"
	if _, err := svc.Create(context.Background(), "user-b", inB); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	recipes, err := svc.List(context.Background(), "user-a", 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(recipes) != 1 {
		t.Fatalf("List() returned %d recipes, want 1", len(recipes))
	}
	if recipes[0].Title != "A's recipe" {
		t.Errorf("Title = %q, want %q", recipes[0].Title, "A's recipe")
	}
}

func TestRecipeServiceUpdate_Partial(t *testing.T) {
	svc, _ := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "New title"
	updated, err := svc.Update(context.Background(), "user-a", created.ID, RecipePatch{Title: &title}, true)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "New title" {
		t.Errorf("Title = %q, want %q", updated.Title, "New title")
	}
	// Everything not in the patch survives.
	if updated.Link != created.Link {
		t.Errorf("Link = %q, partial update must not touch it", updated.Link)
	}
	if updated.TimeMinutes != created.TimeMinutes {
		t.Errorf("TimeMinutes = %d, partial update must not touch it", updated.TimeMinutes)
	}
	if !updated.Price.Equal(created.Price) {
		t.Errorf("Price = %s, partial update must not touch it", updated.Price)
	}
}

func TestRecipeServiceUpdate_FullResetsOptional(t *testing.T) {
	svc, _ := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "Replaced"
	minutes := 10
	price := decimal.RequireFromString("1.00")
	updated, err := svc.Update(context.Background(), "user-a", created.ID, RecipePatch{
		Title:       &title,
		TimeMinutes: &minutes,
		Price:       &price,
	}, false)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Description != "" || updated.Link != "" {
		t.Errorf("full update must reset absent optional fields, got description=%q link=%q",
			updated.Description, updated.Link)
	}
}

func TestRecipeServiceUpdate_FullRequiresFields(t *testing.T) {
	svc, _ := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "only title"
	_, err = svc.Update(context.Background(), "user-a", created.ID, RecipePatch{Title: &title}, false)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("full update missing fields: error = %v, want ErrValidation", err)
	}
}

func TestRecipeServiceUpdate_NonOwner(t *testing.T) {
	svc, repo := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "hijacked"
	_, err = svc.Update(context.Background(), "user-b", created.ID, RecipePatch{Title: &title}, true)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("non-owner Update() error = %v, want ErrNotFound", err)
	}

	if repo.recipes[created.ID].Title != "Sample recipe" {
		t.Error("non-owner update must not modify the recipe")
	}
}

func TestRecipeServiceDelete(t *testing.T) {
	svc, _ := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), "user-a", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = svc.GetByID(context.Background(), "user-a", created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestRecipeServiceDelete_NonOwner(t *testing.T) {
	svc, repo := newTestRecipeService()

	created, err := svc.Create(context.Background(), "user-a", sampleInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = svc.Delete(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("non-owner Delete() error = %v, want ErrNotFound", err)
	}

	if _, exists := repo.recipes[created.ID]; !exists {
		t.Error("recipe must survive a non-owner delete")
	}
}
