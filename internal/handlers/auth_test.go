package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/savoria-catering/apiserver/internal/services"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]types.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

type memSessionRepo struct {
	sessions map[string]types.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]types.Session{}}
}

func (r *memSessionRepo) Create(_ context.Context, session types.Session) (types.Session, error) {
	if _, exists := r.sessions[session.Token]; exists {
		return types.Session{}, store.ErrDuplicate
	}
	r.sessions[session.Token] = session
	return session, nil
}

func (r *memSessionRepo) GetByToken(_ context.Context, token string) (types.Session, error) {
	session, ok := r.sessions[token]
	if !ok || !session.ExpiresAt.After(time.Now()) {
		return types.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (r *memSessionRepo) DeleteByToken(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	for token, session := range r.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func newTestRouter() (*chi.Mux, *services.AuthService, *memUserRepo) {
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	auth := services.NewAuthService(users, sessions, "handler-test-secret",
		services.WithBcryptCost(bcrypt.MinCost),
	)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, auth)
	})
	return router, auth, users
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerTestUser(t *testing.T, router http.Handler, email string) AuthResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret-pass-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rec.Code, rec.Body.String())
	}

	var parsed AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return parsed
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	router, _, _ := newTestRouter()

	resp := registerTestUser(t, router, "flow@example.com")
	if resp.Token == "" {
		t.Fatalf("expected token in register response")
	}
	if resp.User.PasswordHash != "" {
		t.Fatalf("password hash leaked in response")
	}

	rec := doJSON(t, router, http.MethodGet, "/auth/me", resp.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", resp.Token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/auth/me", resp.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "flow@example.com",
		"password": "secret-pass-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "secret-pass-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "short@example.com",
		"password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _, _ := newTestRouter()

	registerTestUser(t, router, "dup@example.com")
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "secret-pass-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}
}

// The wire response is identical for a wrong password and a disabled
// account, so a caller cannot probe account state.
func TestLoginFailureIsUniform(t *testing.T) {
	router, _, users := newTestRouter()

	resp := registerTestUser(t, router, "uniform@example.com")

	wrong := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "uniform@example.com",
		"password": "bad-password-1",
	})
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status %d", wrong.Code)
	}

	stored := users.users[resp.User.ID]
	stored.Active = false
	users.users[resp.User.ID] = stored

	disabled := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "uniform@example.com",
		"password": "secret-pass-1",
	})
	if disabled.Code != http.StatusUnauthorized {
		t.Fatalf("disabled account status %d", disabled.Code)
	}
	if wrong.Body.String() != disabled.Body.String() {
		t.Fatalf("failure bodies differ: %q vs %q", wrong.Body.String(), disabled.Body.String())
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()
	resp := registerTestUser(t, router, "profile@example.com")

	rec := doJSON(t, router, http.MethodPut, "/auth/me", resp.Token, map[string]string{
		"first_name": "Nadia",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", rec.Code, rec.Body.String())
	}

	var updated types.User
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updated.FirstName != "Nadia" {
		t.Fatalf("first name not applied: %q", updated.FirstName)
	}

	rec = doJSON(t, router, http.MethodPut, "/auth/me", resp.Token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()
	resp := registerTestUser(t, router, "pw@example.com")

	rec := doJSON(t, router, http.MethodPost, "/auth/me/password", resp.Token, map[string]string{
		"current_password": "wrong-pass-1",
		"new_password":     "next-secret-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong current password, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/me/password", resp.Token, map[string]string{
		"current_password": "secret-pass-1",
		"new_password":     "next-secret-1",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("change password status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "pw@example.com",
		"password": "next-secret-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password status %d", rec.Code)
	}
}

func TestRoleAllowed(t *testing.T) {
	cases := []struct {
		required string
		role     string
		want     bool
	}{
		{"", types.RoleClient, true},
		{"", types.RoleAdmin, true},
		{types.RoleAdmin, types.RoleAdmin, true},
		{types.RoleAdmin, types.RoleEmployee, true},
		{types.RoleAdmin, types.RoleClient, false},
		{types.RoleClient, types.RoleClient, true},
		{types.RoleClient, types.RoleAdmin, true},
		{types.RoleClient, types.RoleEmployee, false},
		{types.RoleEmployee, types.RoleEmployee, true},
		{types.RoleEmployee, types.RoleAdmin, false},
		{types.RoleEmployee, types.RoleClient, false},
		{"auditor", types.RoleAdmin, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.required, tc.role), func(t *testing.T) {
			if got := roleAllowed(tc.required, tc.role); got != tc.want {
				t.Fatalf("roleAllowed(%q, %q) = %v, want %v", tc.required, tc.role, got, tc.want)
			}
		})
	}
}

func TestRequireRoleResponses(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := RequireRole(types.RoleAdmin)(ok)

	// No principal in context.
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", rec.Code)
	}

	// Wrong role is forbidden, not unauthorized.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), contextPrincipalKey, types.User{ID: 1, Role: types.RoleClient})
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong role, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx = context.WithValue(req.Context(), contextPrincipalKey, types.User{ID: 2, Role: types.RoleEmployee})
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for employee at admin gate, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/auth/me", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}
