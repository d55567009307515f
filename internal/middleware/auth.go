package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	httppkg "accountpool/internal/pkg/http"
)

// Auth requires apiKey on every request except /health. An empty key
// disables the check.
func Auth(next http.Handler, apiKey string) http.Handler {
	if apiKey == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Keep health endpoint accessible for liveness checks.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("x-api-key")
		if key == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			// Both "Bearer xxx" and a raw "xxx" are accepted.
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				key = strings.TrimSpace(auth[7:])
			} else {
				key = auth
			}
		}
		if key == "" {
			key = strings.TrimSpace(r.URL.Query().Get("key"))
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			httppkg.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
