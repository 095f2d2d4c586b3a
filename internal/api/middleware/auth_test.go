package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

func TestSessionToken_Cookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	assert.Equal(t, "cookie-token", SessionToken(req))
}

func TestSessionToken_BearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "header-token", SessionToken(req))
}

func TestSessionToken_CookieWinsOverHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	assert.Equal(t, "cookie-token", SessionToken(req))
}

func TestSessionToken_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	assert.Equal(t, "", SessionToken(req))
}

func requireStatus(t *testing.T, guard func(http.HandlerFunc) http.HandlerFunc, user *entities.User, want int) {
	t.Helper()

	called := false
	handler := guard(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		req = req.WithContext(ContextWithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, want, rec.Code)
	assert.Equal(t, want == http.StatusOK, called)
}

func TestRequireUser(t *testing.T) {
	requireStatus(t, RequireUser, nil, http.StatusUnauthorized)
	requireStatus(t, RequireUser, &entities.User{ID: "u1", Role: entities.RoleUser}, http.StatusOK)
	requireStatus(t, RequireUser, &entities.User{ID: "u2", Role: entities.RoleAdmin}, http.StatusOK)
}

func TestRequireAdmin(t *testing.T) {
	requireStatus(t, RequireAdmin, nil, http.StatusUnauthorized)
	requireStatus(t, RequireAdmin, &entities.User{ID: "u1", Role: entities.RoleUser}, http.StatusForbidden)
	requireStatus(t, RequireAdmin, &entities.User{ID: "u2", Role: entities.RoleAdmin}, http.StatusOK)
}
