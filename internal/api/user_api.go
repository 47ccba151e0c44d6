package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanna-admin/kanna/internal/pkg/httputil"
)

// ListUsersJSON returns a page of users.
//
//	GET /api/users?page=1&limit=25
func (h *Handlers) ListUsersJSON(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, h.apiCfg.DefaultLimit, h.apiCfg.MaxLimit)

	users, err := h.svc.List(r.Context())
	if err != nil {
		respondAPIError(w, r, err)
		return
	}

	httputil.OK(w, NewPaginatedResponse(Page(users, params), params, int64(len(users))))
}

// GetUserJSON returns one user.
//
//	GET /api/users/{id}
func (h *Handlers) GetUserJSON(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondAPIError(w, r, err)
		return
	}
	httputil.OK(w, u)
}
