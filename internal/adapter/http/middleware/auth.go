package middleware

import (
	"net/http"
	"strings"

	"github.com/hackclub/hermes/internal/infrastructure/security"
)

// APIKeyAuth enforces the admin API key on every request it wraps. Keys are
// presented as Bearer tokens and checked against the configured digest in
// constant time.
func APIKeyAuth(verifier *security.KeyVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			if !verifier.Verify(parts[1]) {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
