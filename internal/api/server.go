package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/kanna-admin/kanna/internal/config"
	"github.com/kanna-admin/kanna/internal/respond"
	"github.com/kanna-admin/kanna/internal/service/user"
)

// Deps are the collaborators the HTTP surface needs. DB and Redis may be nil;
// they only feed the health checks.
type Deps struct {
	Users    *user.Service
	Renderer respond.Renderer
	Assets   http.Handler
	DB       *sql.DB
	Redis    *redis.Client
}

// Server represents the HTTP server
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new HTTP server with every route mounted.
func NewServer(cfg *config.Config, deps Deps) *Server {
	handlers := NewHandlers(deps.Users, deps.Renderer, cfg.API)
	health := NewHealthChecker(deps.DB, deps.Redis)
	router := SetupRoutes(handlers, health, deps.Assets, cfg.API.AllowedOrigins)

	return &Server{
		config:   cfg.Server,
		handler:  router,
		handlers: handlers,
		router:   router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      s.config.WriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
