package handlers

import (
	"log/slog"
	"net/http"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
)

type LoginHandler struct {
	cfg      config.Config
	cache    cache.Cache
	provider auth.Provider
	logger   *slog.Logger
}

func NewLoginHandler(cfg config.Config, cache cache.Cache, provider auth.Provider, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		cfg:      cfg,
		cache:    cache,
		provider: provider,
		logger:   logger,
	}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	redirectURL := h.cfg.Server.BaseURL + "/callback"

	authRedirect, err := h.provider.InitiateAuth(r.Context(), redirectURL)
	if err != nil {
		h.logger.Error("failed to initiate auth", "provider", h.provider.Type(), "error", err)
		http.Error(w, "Failed to initiate authentication", http.StatusInternalServerError)
		return
	}

	if authRedirect.CacheKey != "" && authRedirect.CacheData != nil {
		if err := h.cache.Set(r.Context(), authRedirect.CacheKey, authRedirect.CacheData, authRedirect.CacheTTL); err != nil {
			h.logger.Error("failed to cache login state", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	http.Redirect(w, r, authRedirect.URL, http.StatusFound)
}
