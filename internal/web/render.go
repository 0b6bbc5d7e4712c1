package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

//go:embed templates
var templateFS embed.FS

// Renderer turns a view name and its variables into an HTML document
type Renderer interface {
	Render(w io.Writer, view string, data PageData) error
}

// TemplateRenderer renders the embedded html/template views. Each page is
// parsed together with the shared layout so pages can all define "content".
type TemplateRenderer struct {
	views map[string]*template.Template
}

var funcMap = template.FuncMap{
	"articlePath": func(id string) string {
		return "/articles/" + url.PathEscape(id)
	},
	"excerpt": func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		return string([]rune(s)[:n]) + "…"
	},
	"upper": strings.ToUpper,
}

// NewTemplateRenderer parses every page under templates/pages
func NewTemplateRenderer() (*TemplateRenderer, error) {
	pages, err := templateFS.ReadDir("templates/pages")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	views := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(page.Name(), path.Ext(page.Name()))
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templateFS,
			"templates/layouts/*.html",
			"templates/pages/"+page.Name(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page.Name(), err)
		}
		views[name] = tmpl
	}

	return &TemplateRenderer{views: views}, nil
}

// Render executes the layout of view with data
func (t *TemplateRenderer) Render(w io.Writer, view string, data PageData) error {
	tmpl, ok := t.views[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", view, err)
	}
	return nil
}

// Views lists the parsed view names
func (t *TemplateRenderer) Views() []string {
	names := make([]string, 0, len(t.views))
	for name := range t.views {
		names = append(names, name)
	}
	return names
}
