package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
)

type contextKey struct{}

// WithClaims returns a context carrying the authenticated user.
func WithClaims(ctx context.Context, c interfaces.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (interfaces.Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(interfaces.Claims)
	return c, ok
}

// Middleware requires a valid "Authorization: Bearer <token>" header.
func Middleware(tokens interfaces.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				logging.Debug("Rejected session token", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			logging.SetUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole lets through only users holding one of roles. It must run after Middleware.
func RequireRole(roles ...entities.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				logging.Warn("Role not allowed",
					"user_id", claims.UserID, "role", claims.Role, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "access denied for this role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}
