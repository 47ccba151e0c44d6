package respond

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kanna-admin/kanna/internal/signal"
)

// Template names known to the composer.
const (
	TemplateLayout      = "layout"
	TemplateDashboard   = "dashboard"
	TemplateUserList    = "users/list"
	TemplateUserRead    = "users/read"
	TemplateUserRow     = "users/row"
	TemplateTableBody   = "users/table-body"
	TemplateCreateForm  = "users/create-form"
	TemplateEditForm    = "users/edit-form"
	TemplateNotFound    = "errors/not-found"
	TemplateServerError = "errors/server-error"
)

// Renderer produces HTML for a named template.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Descriptor is a fully decided response. The zero Fragment means an empty
// body; Page wraps the fragment in the layout.
type Descriptor struct {
	Fragment string
	Page     bool
	Title    string
	Nav      string
	Status   int
	Data     map[string]any
	Signals  []signal.Signal
	Redirect string
}

// Body renders the descriptor's HTML without touching any writer.
func (d Descriptor) Body(r Renderer) (string, error) {
	if d.Fragment == "" {
		return "", nil
	}
	body, err := r.Render(d.Fragment, d.Data)
	if err != nil {
		return "", err
	}
	if !d.Page {
		return body, nil
	}
	return r.Render(TemplateLayout, map[string]any{
		"title":   d.Title,
		"nav":     d.Nav,
		"content": body,
	})
}

// Write renders the body, then sets headers, status and body on w. Nothing
// is written when rendering or signal encoding fails.
func (d Descriptor) Write(w http.ResponseWriter, r Renderer) error {
	if r == nil {
		return errors.New("respond: nil renderer")
	}
	body, err := d.Body(r)
	if err != nil {
		return err
	}
	trigger, err := signal.Encode(d.Signals)
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}

	h := w.Header()
	if trigger != "" {
		h.Set(signal.HeaderTrigger, trigger)
	}
	if d.Redirect != "" {
		h.Set(signal.HeaderRedirect, d.Redirect)
	}
	h.Set("Content-Type", "text/html; charset=utf-8")

	status := d.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err = io.WriteString(w, body)
	return err
}
