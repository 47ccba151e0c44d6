// Package action holds the admin's request handlers. A handler receives an
// immutable Request and returns a respond.Descriptor; it never touches the
// http.ResponseWriter.
package action

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kanna-admin/kanna/internal/validate"
)

// Header names read by the handlers.
const (
	HeaderHTMX          = "HX-Request"
	HeaderDeleteContext = "X-Delete-Context"

	DeleteContextEditPage = "edit-page"
)

// Request is the transport-neutral view of an incoming request.
type Request struct {
	method string
	params map[string]string
	form   validate.RawInput
	header http.Header
}

// NewRequest copies its inputs so later changes to them don't leak in.
func NewRequest(method string, params map[string]string, form validate.RawInput, header http.Header) Request {
	p := make(map[string]string, len(params))
	for k, v := range params {
		p[k] = v
	}
	f := make(validate.RawInput, len(form))
	for k, v := range form {
		f[k] = v
	}
	return Request{method: method, params: p, form: f, header: header.Clone()}
}

// FromHTTP parses the form body of r and builds a Request with the given
// path parameters.
func FromHTTP(r *http.Request, params map[string]string) (Request, error) {
	if err := r.ParseForm(); err != nil {
		return Request{}, fmt.Errorf("parse form: %w", err)
	}
	return NewRequest(r.Method, params, validate.FromForm(r.PostForm), r.Header), nil
}

func (r Request) Method() string { return r.method }

// Param returns a path parameter or "".
func (r Request) Param(name string) string { return r.params[name] }

// Form returns a copy of the submitted fields.
func (r Request) Form() validate.RawInput {
	f := make(validate.RawInput, len(r.form))
	for k, v := range r.form {
		f[k] = v
	}
	return f
}

// Header returns the first value of a request header.
func (r Request) Header(name string) string {
	if r.header == nil {
		return ""
	}
	return r.header.Get(name)
}

// HTMX reports whether the request was issued by htmx.
func (r Request) HTMX() bool {
	return strings.EqualFold(r.Header(HeaderHTMX), "true")
}
