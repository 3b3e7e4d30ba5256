package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"github.com/orggate/orggate/pkg/security"
)

type contextKey string

const SessionContextKey contextKey = "session"

type AuthMiddleware struct {
	cfg    config.ServerConfig
	cache  cache.Cache
	logger *slog.Logger
}

func NewAuthMiddleware(cfg config.ServerConfig, cache cache.Cache, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

// RequireAuth admits requests carrying a live session and rejects the
// rest with a bare 401. The translation of that 401 into the error-page
// redirect is a blanket rule elsewhere, not this middleware's concern.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := security.GetSessionCookie(r, am.cfg.CookieName)
		if err != nil {
			am.logger.Debug("no session cookie found", "path", r.URL.Path)
			am.reject(w, r)
			return
		}

		sessionData, err := am.cache.Get(r.Context(), "session:"+cookie.Value)
		if err != nil {
			am.logger.Debug("session not found in cache", "session_id", cookie.Value)
			am.reject(w, r)
			return
		}

		var session auth.Session
		if err := json.Unmarshal(sessionData, &session); err != nil {
			am.logger.Error("failed to unmarshal session", "error", err)
			am.cache.Delete(r.Context(), "session:"+cookie.Value)
			am.reject(w, r)
			return
		}

		if session.Expired(time.Now()) {
			am.logger.Debug("session expired", "session_id", session.ID)
			am.cache.Delete(r.Context(), "session:"+cookie.Value)
			am.reject(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, &session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthority gates a route on one authority from the session's
// set. Runs downstream of RequireAuth.
func (am *AuthMiddleware) RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSession(r.Context())
			if !ok {
				am.reject(w, r)
				return
			}

			if !session.HasAuthority(authority) {
				am.logger.Warn("missing authority",
					"principal", session.Principal,
					"authority", authority,
				)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (am *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.ClearSessionCookie(am.cfg))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

func GetSession(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*auth.Session)
	return session, ok
}
