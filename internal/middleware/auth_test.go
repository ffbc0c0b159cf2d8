package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"atelier/internal/domain"
	"atelier/internal/domain/models"
	"atelier/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
)

// stubVerifier accepts a single known token.
type stubVerifier struct {
	token  string
	userID string
}

func (s *stubVerifier) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	if tokenString != s.token {
		return nil, domain.ErrUnauthorized
	}
	return &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: s.userID},
		Role:             "authenticated",
	}, nil
}

func (s *stubVerifier) Close() error { return nil }

func TestAuthMiddleware(t *testing.T) {
	verifier := &stubVerifier{token: "good-token", userID: "user-1"}

	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = httputil.GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(verifier)(next)

	t.Run("bearer token accepted", func(t *testing.T) {
		seenUserID = ""
		req := httptest.NewRequest("GET", "/api/assets", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if seenUserID != "user-1" {
			t.Errorf("expected user id in context, got %q", seenUserID)
		}
	})

	t.Run("session cookie accepted", func(t *testing.T) {
		seenUserID = ""
		req := httptest.NewRequest("GET", "/api/assets", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "good-token"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if seenUserID != "user-1" {
			t.Errorf("expected user id in context, got %q", seenUserID)
		}
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/assets", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/assets", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("health check passes through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for unauthenticated health check, got %d", rec.Code)
		}
	})
}
