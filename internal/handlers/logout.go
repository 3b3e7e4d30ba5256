package handlers

import (
	"log/slog"
	"net/http"

	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"github.com/orggate/orggate/pkg/security"
)

type LogoutHandler struct {
	cfg    config.Config
	cache  cache.Cache
	logger *slog.Logger
}

func NewLogoutHandler(cfg config.Config, cache cache.Cache, logger *slog.Logger) *LogoutHandler {
	return &LogoutHandler{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cookie, err := security.GetSessionCookie(r, h.cfg.Server.CookieName)
	if err == nil {
		if err := h.cache.Delete(r.Context(), "session:"+cookie.Value); err != nil {
			h.logger.Warn("failed to delete session from cache", "error", err)
		}
	}

	clearCookie := security.ClearSessionCookie(h.cfg.Server)
	http.SetCookie(w, clearCookie)

	h.logger.Info("user logged out")

	http.Redirect(w, r, "/", http.StatusFound)
}
