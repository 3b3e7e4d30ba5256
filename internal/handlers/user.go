package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/orggate/orggate/internal/middleware"
)

// UserHandler exposes the authenticated principal to the browser-side
// renderer. It runs behind RequireAuth, so reaching it without a
// session yields the 401 contract, not this handler.
type UserHandler struct {
	csrf   *middleware.CSRFMiddleware
	logger *slog.Logger
}

func NewUserHandler(csrf *middleware.CSRFMiddleware, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		csrf:   csrf,
		logger: logger,
	}
}

type userResponse struct {
	Principal   string    `json:"principal"`
	Provider    string    `json:"provider"`
	Authorities []string  `json:"authorities"`
	ExpiresAt   time.Time `json:"expires_at"`
	CSRFToken   string    `json:"csrf_token"`
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	csrfToken, err := h.csrf.GenerateCSRFToken(r.Context())
	if err != nil {
		h.logger.Error("failed to generate CSRF token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userResponse{
		Principal:   session.Principal,
		Provider:    session.Provider,
		Authorities: session.Authorities,
		ExpiresAt:   session.ExpiresAt,
		CSRFToken:   csrfToken,
	})
}
