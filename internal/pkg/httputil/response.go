package httputil

import (
	"encoding/json"
	"html"
	"io"
	"net/http"

	"github.com/kanna-admin/kanna/internal/pkg/logger"
)

// ErrorResponse is the error envelope of the JSON API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data as JSON with the given status code. Encoding failures
// are logged; the status line is already sent by then.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("json encode failed", "error", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// HTML writes an HTML body with the given status code.
func HTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		logger.Warn("html write failed", "error", err)
	}
}

// HTMLError writes a minimal HTML error page. message is escaped.
func HTMLError(w http.ResponseWriter, status int, message string) {
	HTML(w, status, "<!DOCTYPE html><title>"+http.StatusText(status)+"</title><p>"+html.EscapeString(message)+"</p>")
}

// InternalHTMLError logs err and writes a generic 500 page. The cause never
// reaches the client.
func InternalHTMLError(w http.ResponseWriter, err error) {
	logger.Error("internal error", "error", err)
	HTMLError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
}
