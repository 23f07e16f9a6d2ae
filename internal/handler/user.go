package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/service"
)

// UserHandler serves account creation, token issuance, and the profile
// endpoint for the authenticated user.
type UserHandler struct {
	users  *service.UserService
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, tokens *auth.TokenService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// userView is the wire shape for a user. It enumerates fields explicitly —
// the password hash can't leak through a field that doesn't exist here.
type userView struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserView(u *model.User) userView {
	return userView{
		Email: u.Email,
		Name:  u.Name,
	}
}

// HandleCreate registers a new account.
//
// HTTP: POST /api/user/create
// Body: {"email": ..., "password": ..., "name": ...}
// 201 with {email,name} on success; the password is never echoed.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserView(user))
}

// HandleToken authenticates a credential pair and returns the bearer token.
//
// HTTP: POST /api/user/token
// Body: {"email": ..., "password": ...}
// 200 with {"token": ...} on success.
//
// Failures — blank password, unknown email, wrong password — are all 400
// with the same body and no token field. This endpoint validates submitted
// credentials rather than an Authorization header, so the bad-credentials
// outcome is a request error (400), not 401; the single shape is the
// anti-enumeration rule again.
func (h *UserHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "unable to authenticate with provided credentials",
			})
			return
		}
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to issue token",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token.Key})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/user/me (behind RequireAuth)
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

// HandleUpdateMe updates the authenticated user's profile.
//
// HTTP: PUT /api/user/me   — full update, email/password/name all required
// HTTP: PATCH /api/user/me — partial update, only provided fields change
//
// Pointer fields distinguish "absent" from "empty" in the decoded body.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Name     *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	partial := r.Method == http.MethodPatch

	user, err := h.users.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, partial)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}
