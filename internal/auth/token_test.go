package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/model"
)

// mockTokenRepo is an in-memory repository.TokenRepository.
type mockTokenRepo struct {
	byKey  map[string]*model.AuthToken
	byUser map[string]*model.AuthToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{
		byKey:  make(map[string]*model.AuthToken),
		byUser: make(map[string]*model.AuthToken),
	}
}

func (m *mockTokenRepo) Create(_ context.Context, token *model.AuthToken) error {
	stored := *token
	m.byKey[token.Key] = &stored
	m.byUser[token.UserID] = &stored
	return nil
}

func (m *mockTokenRepo) GetByKey(_ context.Context, key string) (*model.AuthToken, error) {
	t, ok := m.byKey[key]
	if !ok {
		return nil, apperror.NotFound("token", key)
	}
	result := *t
	return &result, nil
}

func (m *mockTokenRepo) GetByUserID(_ context.Context, userID string) (*model.AuthToken, error) {
	t, ok := m.byUser[userID]
	if !ok {
		return nil, apperror.NotFound("token", userID)
	}
	result := *t
	return &result, nil
}

var hexKeyPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

func TestIssue_GeneratesOpaqueKey(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())

	token, err := svc.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if !hexKeyPattern.MatchString(token.Key) {
		t.Errorf("Key = %q, want 40 lowercase hex characters", token.Key)
	}
	if token.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", token.UserID, "user-1")
	}
}

// TestIssue_FoundOrCreate pins the reissue policy: the same user gets the
// same token back, not a rotated one.
func TestIssue_FoundOrCreate(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())

	first, err := svc.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}
	second, err := svc.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second Issue() error = %v", err)
	}

	if first.Key != second.Key {
		t.Errorf("reissue returned a different key: %q vs %q", first.Key, second.Key)
	}
}

func TestIssue_DistinctUsersDistinctKeys(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())

	a, _ := svc.Issue(context.Background(), "user-a")
	b, _ := svc.Issue(context.Background(), "user-b")

	if a.Key == b.Key {
		t.Error("two users received the same token key")
	}
}

// racingTokenRepo simulates losing a concurrent first login: the initial
// lookup misses, another request's row lands before our insert, and Create
// fails on the one-token-per-user constraint.
type racingTokenRepo struct {
	*mockTokenRepo
	winner *model.AuthToken
}

func (m *racingTokenRepo) GetByUserID(ctx context.Context, userID string) (*model.AuthToken, error) {
	token, err := m.mockTokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		// First miss: the concurrent request commits its row now.
		m.mockTokenRepo.Create(ctx, m.winner)
		return nil, err
	}
	return token, nil
}

func (m *racingTokenRepo) Create(_ context.Context, _ *model.AuthToken) error {
	return errors.New("constraint failed: UNIQUE constraint failed: auth_tokens.user_id")
}

// TestIssue_ConcurrentFirstLogin: losing the insert race must not fail the
// login — the loser re-fetches and returns the winner's token.
func TestIssue_ConcurrentFirstLogin(t *testing.T) {
	winner := &model.AuthToken{
		Key:    "aaaabbbbccccddddeeeeffff0000111122223333",
		UserID: "user-1",
	}
	svc := NewTokenService(&racingTokenRepo{
		mockTokenRepo: newMockTokenRepo(),
		winner:        winner,
	})

	token, err := svc.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v, losing the race must not fail the login", err)
	}
	if token.Key != winner.Key {
		t.Errorf("Key = %q, want the already-committed token %q", token.Key, winner.Key)
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())

	token, _ := svc.Issue(context.Background(), "user-1")

	userID, err := svc.Resolve(context.Background(), token.Key)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Resolve() = %q, want %q", userID, "user-1")
	}
}

func TestResolve_UnknownKey(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())

	_, err := svc.Resolve(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Resolve() error = %v, want ErrUnauthorized", err)
	}
}

func TestResolve_EmptyKey(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())

	_, err := svc.Resolve(context.Background(), "")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Resolve() error = %v, want ErrUnauthorized", err)
	}
}

// =========================================================================
// MIDDLEWARE TESTS
// =========================================================================

func TestRequireAuth_ValidToken(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())
	token, _ := svc.Issue(context.Background(), "user-1")

	var gotUserID string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req.Header.Set("Authorization", "Token "+token.Key)
	rr := httptest.NewRecorder()

	RequireAuth(svc)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !gotOK || gotUserID != "user-1" {
		t.Errorf("UserIDFromContext = (%q, %v), want (\"user-1\", true)", gotUserID, gotOK)
	}
}

func TestRequireAuth_BearerSchemeAccepted(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())
	token, _ := svc.Issue(context.Background(), "user-1")

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+token.Key)
	rr := httptest.NewRecorder()

	RequireAuth(svc)(next).ServeHTTP(rr, req)

	if !called {
		t.Error("handler should run for a valid Bearer token")
	}
}

func TestRequireAuth_MissingAndInvalidLookTheSame(t *testing.T) {
	svc := NewTokenService(newMockTokenRepo())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without valid auth")
	})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"unknown key", "Token 0000000000000000000000000000000000000000"},
		{"scheme only", "Token"},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			RequireAuth(svc)(next).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			bodies = append(bodies, rr.Body.String())
		})
	}

	// Constant-shape failure: every rejection reads identically.
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("401 bodies differ between cases: %q vs %q", bodies[0], bodies[i])
		}
	}
}
