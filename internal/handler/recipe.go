package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/service"
	"github.com/shopspring/decimal"
)

// RecipeHandler serves CRUD over the authenticated user's recipes.
// Every route is behind RequireAuth; the caller identity comes from the
// request context and is passed explicitly into the service.
type RecipeHandler struct {
	recipes *service.RecipeService
	logger  *slog.Logger
}

// NewRecipeHandler creates a RecipeHandler.
func NewRecipeHandler(recipes *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		logger:  logger,
	}
}

// VIEW MAPPING:
// Two explicit wire shapes, two explicit mapping functions. The list view
// trims description; the detail view carries it. No shared base struct and
// no field inheritance — each view enumerates exactly what it sends, so the
// storage schema can change without silently changing the wire schema.

type recipeListView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
}

type recipeDetailView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Description string          `json:"description"`
}

func toListView(r *model.Recipe) recipeListView {
	return recipeListView{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
	}
}

func toDetailView(r *model.Recipe) recipeDetailView {
	return recipeDetailView{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Description: r.Description,
	}
}

// recipeRequest is the decode target for create and update bodies.
// Pointer fields distinguish "absent" from "zero value", which is what
// makes PATCH semantics possible. There is no owner/user field — anything a
// client sends under such a key is dropped by the decoder and can never
// reach the service.
type recipeRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
}

// HandleList returns the caller's recipes, id descending, in the trimmed
// list shape.
//
// HTTP: GET /api/recipes
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	recipes, err := h.recipes.List(r.Context(), callerID, 0, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]recipeListView, 0, len(recipes))
	for i := range recipes {
		views = append(views, toListView(&recipes[i]))
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleGetByID returns one recipe in the full detail shape.
//
// HTTP: GET /api/recipes/{id}
// 404 when absent or owned by another user — indistinguishable on purpose.
func (h *RecipeHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	recipe, err := h.recipes.GetByID(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailView(recipe))
}

// HandleCreate saves a new recipe owned by the caller.
//
// HTTP: POST /api/recipes
// Body: {"title": ..., "time_minutes": ..., "price": "5.99", ...}
// 201 with the persisted record including its generated id.
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	if req.Title == nil {
		writeError(w, apperror.ValidationFailed("title", "title is required"))
		return
	}
	if req.TimeMinutes == nil {
		writeError(w, apperror.ValidationFailed("time_minutes", "time_minutes is required"))
		return
	}
	if req.Price == nil {
		writeError(w, apperror.ValidationFailed("price", "price is required"))
		return
	}

	in := service.RecipeInput{
		Title:       *req.Title,
		TimeMinutes: *req.TimeMinutes,
		Price:       *req.Price,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Link != nil {
		in.Link = *req.Link
	}

	recipe, err := h.recipes.Create(r.Context(), callerID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDetailView(recipe))
}

// HandleUpdate applies a full (PUT) or partial (PATCH) update.
//
// HTTP: PUT /api/recipes/{id}, PATCH /api/recipes/{id}
// Any owner field in the payload is ignored; the stored owner never changes
// through this path. 404 on absence or ownership mismatch.
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	partial := r.Method == http.MethodPatch

	recipe, err := h.recipes.Update(r.Context(), callerID, r.PathValue("id"), service.RecipePatch{
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
	}, partial)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailView(recipe))
}

// HandleDelete removes a recipe permanently.
//
// HTTP: DELETE /api/recipes/{id}
// 204 with empty body on success; 404 on absence or ownership mismatch.
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	if err := h.recipes.Delete(r.Context(), callerID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
