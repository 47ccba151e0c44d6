// Package render turns named Liquid templates into HTML strings.
//
// Templates are embedded in the binary and parsed once by New; a template
// that fails to parse stops startup. Every interpolated value is expected to
// go through the escape filter. The one exception is the layout's content
// slot, which receives already rendered HTML.
package render

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"github.com/osteele/liquid"
)

const templateExt = ".liquid"

//go:embed templates
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Renderer renders the embedded templates by name, e.g. "users/row".
// It is safe for concurrent use after New returns.
type Renderer struct {
	engine    *liquid.Engine
	templates map[string]*liquid.Template
}

// New parses every embedded template.
func New() (*Renderer, error) {
	return NewFromFS(templateFS, "templates")
}

// NewFromFS parses every *.liquid file under root in fsys. Template names
// are the slash-separated paths relative to root without the extension.
func NewFromFS(fsys fs.FS, root string) (*Renderer, error) {
	r := &Renderer{
		engine:    liquid.NewEngine(),
		templates: make(map[string]*liquid.Template),
	}
	r.registerFilters()

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, templateExt) {
			return nil
		}
		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}
		tpl, perr := r.engine.ParseString(string(src))
		if perr != nil {
			return fmt.Errorf("parse template %s: %w", path, perr)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, root+"/"), templateExt)
		r.templates[name] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) registerFilters() {
	r.engine.RegisterFilter("escape", html.EscapeString)

	// Renders another template with the piped value as its bindings:
	// {{ row | partial: "users/row" }}
	r.engine.RegisterFilter("partial", func(value interface{}, name string) (string, error) {
		data, ok := value.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("partial %s: bindings must be a map, got %T", name, value)
		}
		return r.Render(name, data)
	})
}

// Render executes the named template.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("render: unknown template %q", name)
	}
	out, err := tpl.RenderString(data)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out, nil
}

// Has reports whether a template with the given name was loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Names lists the loaded templates in sorted order.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Assets serves the embedded client assets (admin-htmx.js, admin.css).
// Mount it with http.StripPrefix.
func Assets() http.Handler {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
