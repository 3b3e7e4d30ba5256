package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		CookieName:     "orggate-session",
		CookieSameSite: "lax",
		SessionTTL:     time.Hour,
	}
}

func storeSession(t *testing.T, c cache.Cache, session *auth.Session) {
	t.Helper()

	data, err := json.Marshal(session)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "session:"+session.ID, data, time.Hour))
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no cookie yields 401", func(t *testing.T) {
		c := cache.NewMemoryCache()
		defer c.Close()

		am := NewAuthMiddleware(testServerConfig(), c, logger)
		handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/user", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown session yields 401", func(t *testing.T) {
		c := cache.NewMemoryCache()
		defer c.Close()

		am := NewAuthMiddleware(testServerConfig(), c, logger)
		handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/user", nil)
		req.AddCookie(&http.Cookie{Name: "orggate-session", Value: "bogus"})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("live session passes with context", func(t *testing.T) {
		c := cache.NewMemoryCache()
		defer c.Close()

		session := &auth.Session{
			ID:          "sess-1",
			Principal:   "octocat",
			Authorities: []string{"ROLE_USER"},
			ExpiresAt:   time.Now().Add(time.Hour),
		}
		storeSession(t, c, session)

		var seen *auth.Session
		am := NewAuthMiddleware(testServerConfig(), c, logger)
		handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = GetSession(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/user", nil)
		req.AddCookie(&http.Cookie{Name: "orggate-session", Value: "sess-1"})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "octocat", seen.Principal)
	})

	t.Run("expired session yields 401 and is purged", func(t *testing.T) {
		c := cache.NewMemoryCache()
		defer c.Close()

		session := &auth.Session{
			ID:        "sess-2",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		storeSession(t, c, session)

		am := NewAuthMiddleware(testServerConfig(), c, logger)
		handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/user", nil)
		req.AddCookie(&http.Cookie{Name: "orggate-session", Value: "sess-2"})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		exists, err := c.Exists(context.Background(), "session:sess-2")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestRequireAuthority(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.NewMemoryCache()
	defer c.Close()

	am := NewAuthMiddleware(testServerConfig(), c, logger)

	protected := am.RequireAuthority("ROLE_USER")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("authority present", func(t *testing.T) {
		session := &auth.Session{Authorities: []string{"ROLE_USER"}, ExpiresAt: time.Now().Add(time.Hour)}
		ctx := context.WithValue(context.Background(), SessionContextKey, session)

		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest("GET", "/user", nil).WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("authority missing", func(t *testing.T) {
		session := &auth.Session{Authorities: []string{"ROLE_OTHER"}, ExpiresAt: time.Now().Add(time.Hour)}
		ctx := context.WithValue(context.Background(), SessionContextKey, session)

		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest("GET", "/user", nil).WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest("GET", "/user", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
