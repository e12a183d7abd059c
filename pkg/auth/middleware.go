package auth

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// ContextKeyName is the context key for the authenticated key name
const ContextKeyName contextKey = "auth_key_name"

// Middleware returns an HTTP middleware that requires a valid API key in
// the Authorization header.
func (m *KeyManager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
				return
			}

			token, err := ParseAuthHeader(authHeader)
			if err != nil {
				http.Error(w, "Unauthorized: invalid authorization header", http.StatusUnauthorized)
				return
			}

			name, err := m.Verify(token)
			if err != nil {
				http.Error(w, "Unauthorized: invalid api key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyName, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
