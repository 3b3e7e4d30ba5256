package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/authz"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"github.com/orggate/orggate/internal/metrics"
	"github.com/orggate/orggate/pkg/security"
)

// CallbackHandler completes a login attempt: provider handshake, then
// the membership verdict, then either a session or a bare 401. The 401
// is picked up by the blanket error-page rule further out.
type CallbackHandler struct {
	cfg       config.Config
	cache     cache.Cache
	provider  auth.Provider
	evaluator authz.Evaluator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewCallbackHandler(cfg config.Config, cache cache.Cache, provider auth.Provider, evaluator authz.Evaluator, m *metrics.Metrics, logger *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		cfg:       cfg,
		cache:     cache,
		provider:  provider,
		evaluator: evaluator,
		metrics:   m,
		logger:    logger,
	}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	login, err := h.provider.HandleCallback(r.Context(), r)
	if err != nil {
		// Handshake failures are externally indistinguishable from a
		// membership denial.
		h.logger.Warn("provider handshake failed",
			"provider", h.provider.Type(),
			"reason", auth.ReasonProviderGrantDenied,
			"error", err,
		)
		h.recordLogin(auth.Denied(auth.ReasonProviderGrantDenied))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	outcome := h.evaluator.Evaluate(r.Context(), login.Profile, login.AccessToken)
	h.recordLogin(outcome)

	directive := auth.Classify(outcome)
	if !directive.AttachSession {
		h.logger.Info("login denied",
			"provider", h.provider.Type(),
			"reason", outcome.Reason(),
		)
		http.Error(w, "Unauthorized", directive.RejectStatus)
		return
	}

	now := time.Now()
	expiresAt := now.Add(h.cfg.Server.SessionTTL)
	if !login.TokenExpiry.IsZero() && login.TokenExpiry.Before(expiresAt) {
		expiresAt = login.TokenExpiry
	}

	session := &auth.Session{
		ID:          uuid.New().String(),
		Provider:    h.provider.Type(),
		Principal:   login.Profile.Identity("login", "preferred_username", "email", "sub"),
		Profile:     login.Profile,
		Authorities: directive.Authorities,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		h.logger.Error("failed to marshal session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ttl := time.Until(expiresAt)
	if err := h.cache.Set(r.Context(), "session:"+session.ID, sessionData, ttl); err != nil {
		h.logger.Error("failed to cache session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	cookie := security.CreateSessionCookie(h.cfg.Server, session.ID, ttl)
	http.SetCookie(w, cookie)

	h.logger.Info("authentication successful",
		"provider", h.provider.Type(),
		"principal", session.Principal,
		"authorities", session.Authorities,
		"session_id", session.ID,
	)

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *CallbackHandler) recordLogin(outcome auth.Outcome) {
	if h.metrics != nil {
		h.metrics.RecordLogin(outcome.IsGranted(), string(outcome.Reason()))
	}
}
