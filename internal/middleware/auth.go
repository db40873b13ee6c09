package middleware

import (
	"net/http"
	"strings"

	"docflow/internal/auth"
	"docflow/internal/httputil"
)

// publicPaths are reachable without a bearer token. The scanner
// callback authenticates with its own shared secret inside the handler.
var publicPaths = map[string]bool{
	"/health":                true,
	"/api/files/scan-result": true,
}

// AuthMiddleware verifies the bearer token on every request and places
// the resulting actor into the request context. Requests without a
// valid token are rejected before reaching any handler.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithActor(r, claims.Actor()))
		})
	}
}
