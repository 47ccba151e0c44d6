package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kanna-admin/kanna/internal/action"
	"github.com/kanna-admin/kanna/internal/config"
	"github.com/kanna-admin/kanna/internal/pkg/httputil"
	"github.com/kanna-admin/kanna/internal/pkg/logger"
	"github.com/kanna-admin/kanna/internal/respond"
	"github.com/kanna-admin/kanna/internal/service/user"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	users    *action.Users
	svc      *user.Service
	renderer respond.Renderer
	apiCfg   config.APIConfig
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *user.Service, renderer respond.Renderer, apiCfg config.APIConfig) *Handlers {
	return &Handlers{
		users:    action.NewUsers(svc),
		svc:      svc,
		renderer: renderer,
		apiCfg:   apiCfg,
	}
}

// serve adapts an action to net/http: it builds the Request, runs the
// action and writes the resulting descriptor.
func (h *Handlers) serve(fn action.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := map[string]string{}
		if id := chi.URLParam(r, "id"); id != "" {
			params["id"] = id
		}

		req, err := action.FromHTTP(r, params)
		if err != nil {
			httputil.HTMLError(w, http.StatusBadRequest, "The submitted form could not be read.")
			return
		}

		d, err := action.Run(r.Context(), fn, req)
		if err != nil {
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"status", d.Status,
				"error", err,
			}
			if d.Status >= http.StatusInternalServerError {
				logger.Error("action failed", fields...)
			} else {
				logger.Debug("action failed", fields...)
			}
		}
		h.write(w, r, d)
	}
}

func (h *Handlers) write(w http.ResponseWriter, r *http.Request, d respond.Descriptor) {
	if err := d.Write(w, h.renderer); err != nil {
		httputil.InternalHTMLError(w, fmt.Errorf("%s %s (request %s): %w",
			r.Method, r.URL.Path, middleware.GetReqID(r.Context()), err))
	}
}

// NotFound renders the not-found page for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, respond.NotFound(isHTMX(r)))
}

// MethodNotAllowed answers with a plain 405.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.HTMLError(w, http.StatusMethodNotAllowed, "Method not allowed.")
}

func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(action.HeaderHTMX), "true")
}
