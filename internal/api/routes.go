package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kanna-admin/kanna/internal/respond"
)

// SetupRoutes configures all routes. assets may be nil.
func SetupRoutes(h *Handlers, hc *HealthChecker, assets http.Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "kanna-admin")
			next.ServeHTTP(w, req)
		})
	})

	// Health checks
	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)

	if assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", assets))
	}

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, respond.DashboardURL, http.StatusFound)
	})
	r.Get("/admin", h.serve(h.users.Dashboard))

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.serve(h.users.ListFragment))
		r.Post("/", h.serve(h.users.Create))
		r.Get("/list", h.serve(h.users.List))
		r.Get("/create", h.serve(h.users.CreateForm))
		r.Get("/{id}", h.serve(h.users.ReadOne))
		r.Put("/{id}", h.serve(h.users.Update))
		r.Delete("/{id}", h.serve(h.users.Delete))
	})

	// JSON API, open to the configured browser origins.
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/users", h.ListUsersJSON)
		r.Get("/users/{id}", h.GetUserJSON)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
