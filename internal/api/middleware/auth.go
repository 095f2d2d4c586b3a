package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "session"

// UserFromContext returns the authenticated user, or nil
func UserFromContext(ctx context.Context) *entities.User {
	user, _ := ctx.Value(userContextKey).(*entities.User)
	return user
}

// ContextWithUser returns a context carrying an authenticated user
func ContextWithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// SessionToken extracts the session token from the cookie or the
// Authorization header
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// AuthMiddleware resolves the session on every request. Requests without a
// valid session pass through unauthenticated; route guards decide access.
func AuthMiddleware(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token != "" {
				if user, err := auth.UserFromSession(r.Context(), token); err == nil {
					r = r.WithContext(ContextWithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser guards a route behind authentication
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			respondUnauthorized(w, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireAdmin guards a route behind the Admin role
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			respondUnauthorized(w, "authentication required")
			return
		}
		if user.Role != entities.RoleAdmin {
			respondForbidden(w, "admin role required")
			return
		}
		next(w, r)
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, message)
}

func respondForbidden(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusForbidden, message)
}

func respondJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
