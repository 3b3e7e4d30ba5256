package server

import (
	"net/http"

	"github.com/orggate/orggate/internal/handlers"
	"github.com/orggate/orggate/internal/middleware"
)

func (s *Server) setupRoutes() (http.Handler, error) {
	mux := http.NewServeMux()

	csrfMiddleware := middleware.NewCSRFMiddleware(s.cache, s.logger)
	authMiddleware := middleware.NewAuthMiddleware(s.cfg.Server, s.cache, s.logger)

	homeHandler, err := handlers.NewHomeHandler(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}

	loginHandler := handlers.NewLoginHandler(s.cfg, s.cache, s.provider, s.logger)
	callbackHandler := handlers.NewCallbackHandler(s.cfg, s.cache, s.provider, s.evaluator, s.metrics, s.logger)
	userHandler := handlers.NewUserHandler(csrfMiddleware, s.logger)
	logoutHandler := handlers.NewLogoutHandler(s.cfg, s.cache, s.logger)
	healthHandler := handlers.NewHealthHandler(s.cfg, s.cache, s.provider, s.logger)

	mux.HandleFunc("/", homeHandler.ServeHTTP)
	mux.HandleFunc("/login", loginHandler.ServeHTTP)
	mux.HandleFunc("/callback", callbackHandler.ServeHTTP)
	mux.Handle("/user", authMiddleware.RequireAuth(
		authMiddleware.RequireAuthority(s.cfg.Authz.Authority)(userHandler),
	))
	mux.Handle("/logout", csrfMiddleware.ValidateCSRF(logoutHandler))
	mux.HandleFunc("/unauthenticated", handlers.Unauthenticated)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)
	mux.Handle("/metrics", s.metrics.Handler())

	// ErrorPage sits directly around the mux so the 401 class is caught
	// no matter which route produced it.
	handler := middleware.Recovery(s.logger)(
		middleware.Logging(s.logger, s.metrics)(
			addSecurityHeaders(
				middleware.ErrorPage("/unauthenticated")(mux),
			),
		),
	)

	return handler, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
