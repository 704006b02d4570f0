// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/circleblog/internal/core/interaction"
	"github.com/taibuivan/circleblog/internal/core/post"
	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/config"
	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/csrf"
	"github.com/taibuivan/circleblog/internal/platform/middleware"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/users/account"
	"github.com/taibuivan/circleblog/internal/users/auth"
)

// formOverhead is the allowance for text fields next to an uploaded image.
const formOverhead = 1 << 20

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 only when Postgres and Redis answer.
	Readiness http.HandlerFunc

	// Auth handles registration, login, logout and the session probe.
	Auth *auth.Handler

	// Account handles the caller's profile and password change.
	Account *account.Handler

	// Posts handles the blog posts.
	Posts *post.Handler

	// Interactions handles likes and comments.
	Interactions *interaction.Handler

	// UploadDir is the directory served under /<UPLOAD_URL_PREFIX>/.
	UploadDir string
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, sessions middleware.IdentityResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(chimw.CleanPath)
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.Authenticate(sessions, cfg.SessionCookieName))

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Resource"))
	})

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	if h.UploadDir != "" {
		prefix := "/" + strings.Trim(cfg.UploadURLPrefix, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, staticFiles(h.UploadDir)))
	}

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		// Mutations by a logged-in session must echo the CSRF token.
		api.Group(func(uploads chi.Router) {
			uploads.Use(csrf.Protect(cfg.MaxUploadSize + formOverhead))
			uploads.Mount("/posts", h.Posts.WithComments(h.Interactions.ListComments).Routes())
		})

		api.Group(func(scripts chi.Router) {
			scripts.Use(csrf.Protect(formOverhead))
			scripts.Mount("/likes", h.Interactions.LikeRoutes())
			scripts.Mount("/comments", h.Interactions.CommentRoutes())
			scripts.Mount("/account", h.Account.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// staticFiles serves uploaded images without directory listings.
func staticFiles(directory string) http.Handler {
	files := http.FileServer(http.Dir(directory))
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "" || strings.HasSuffix(request.URL.Path, "/") {
			respond.Error(writer, request, apperr.NotFound("File"))
			return
		}
		writer.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(writer, request)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
