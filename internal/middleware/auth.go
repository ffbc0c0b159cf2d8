package middleware

import (
	"net/http"
	"strings"

	"atelier/internal/auth"
	"atelier/internal/httputil"
)

// AuthMiddleware verifies the bearer token (or session cookie) on every
// request and stores the authenticated user id in the request context.
// Health checks pass through unauthenticated.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithClaims(r, claims)
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls the JWT from the Authorization header, falling back
// to the session cookie set by the identity provider.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}

	return ""
}
