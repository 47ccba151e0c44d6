package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kanna-admin/kanna/internal/pkg/httputil"
	"github.com/kanna-admin/kanna/internal/pkg/logger"
	"github.com/kanna-admin/kanna/internal/service/user"
)

// Internal errors (database details, DSNs, driver messages) never reach API
// consumers. Server errors get a generic message and the full error is
// logged.

// respondAPIError maps a service error onto a JSON error response.
func respondAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, user.ErrNotFound) {
		httputil.NotFound(w, "user not found")
		return
	}
	if ce, ok := user.IsConflict(err); ok {
		httputil.Error(w, http.StatusConflict, ce.Message)
		return
	}
	respondSafeError(w, r, http.StatusInternalServerError, err)
}

// respondSafeError logs the internal error and sends a sanitized JSON error.
func respondSafeError(w http.ResponseWriter, r *http.Request, code int, internalErr error) {
	if internalErr != nil && code >= http.StatusInternalServerError {
		logger.Error("api request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", code,
			"error", internalErr,
		)
	}
	httputil.Error(w, code, safeErrorMessage(code, internalErr))
}

// safeErrorMessage returns a message fit for clients. Client errors pass
// through; server errors collapse to a category.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}
	if internalErr == nil {
		return "An internal error occurred"
	}

	msg := strings.ToLower(internalErr.Error())
	switch {
	case containsAny(msg, "connection refused", "connection reset", "no such host", "dial tcp"):
		return "Service temporarily unavailable"
	case containsAny(msg, "timeout", "deadline exceeded", "context canceled"):
		return "Request timed out"
	case containsAny(msg, "sql", "pq:", "query", "scan", "database"):
		return "A database error occurred"
	default:
		return "An internal error occurred"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
