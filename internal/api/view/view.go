// Package view renders the admin pages from embedded html/template files.
// Every page is parsed together with layout.html and fills its "content"
// block.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chaldal/admin-console/internal/api/flash"
	"github.com/chaldal/admin-console/internal/core/domain"
)

//go:embed templates/*.html
var files embed.FS

//go:embed static
var static embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title       string
	Section     string
	User        *domain.User
	Provisional bool
	Flash       *flash.Message
	// Error is the form-level message; Errors holds per-field messages.
	Error  string
	Errors map[string]string
	Form   any
	Data   any
}

// FieldError returns the message for field, if any.
func (p Page) FieldError(field string) string {
	return p.Errors[field]
}

// Renderer implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. storageBaseURL resolves relative image
// paths returned by the API.
func New(storageBaseURL string) (*Renderer, error) {
	funcs := template.FuncMap{
		"imageURL": func(p string) string { return domain.ResolveImageURL(storageBaseURL, p) },
		"money":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"deref": func(v *int64) int64 {
			if v == nil {
				return 0
			}
			return *v
		},
	}

	layout, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(files, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("view: clone layout: %w", err)
		}
		if _, err := t.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Static returns the stylesheet and other assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, path.Base(layoutFile), data)
}
