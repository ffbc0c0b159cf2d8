package handler

import (
	"log/slog"
	"net/http"

	"atelier/internal/httputil"
)

// SessionHandler handles session and health endpoints
type SessionHandler struct {
	logger *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *slog.Logger) *SessionHandler {
	return &SessionHandler{logger: logger}
}

// GetSession reports the authenticated user behind the current token.
// A 401 from the auth middleware (never this handler) tells the client
// to redirect to login.
// GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp := struct {
		UserID string `json:"user_id"`
		Email  string `json:"email,omitempty"`
	}{UserID: userID}

	if claims := httputil.GetClaims(r); claims != nil {
		resp.Email = claims.Email
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HealthCheck reports liveness
// GET /health
func (h *SessionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
