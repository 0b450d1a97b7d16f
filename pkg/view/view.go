// Package view defines the rendering boundary between HTTP handlers
// and the template layer. Handlers pass a logical page name plus data;
// the concrete renderer owns template lookup and execution.
package view

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// ErrTemplateNotFound is returned when Render is called with an
// unknown page name.
var ErrTemplateNotFound = errors.New("view.template_not_found")

// Data carries page data into a template.
type Data map[string]any

// Renderer renders a named page with the given status code.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data Data) error
}

// TemplateRenderer renders html/template pages parsed from a fs.FS.
// Each page is its own template set so pages can define blocks with
// the same names without clashing.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses every file matching pattern under fsys as
// an independent page keyed by its base filename without extension.
func NewTemplateRenderer(fsys fs.FS, pattern string, funcs template.FuncMap) (*TemplateRenderer, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		// ParseFS registers the content under the file's base name, so
		// the root template must carry that exact name for Execute to
		// find it.
		tmpl, err := template.New(path.Base(f)).Funcs(funcs).ParseFS(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", f, err)
		}
		pages[pageName(f)] = tmpl
	}

	return &TemplateRenderer{pages: pages}, nil
}

func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data Data) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.Execute(w, data)
}

func pageName(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}
