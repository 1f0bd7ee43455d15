package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"mmradar/pkg/errors"
)

// Embedded message templates from pkg/templates/assets/
//
//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// Renderer is the rendering surface consumed by report and command code
type Renderer interface {
	Render(name string, data any) (string, error)
}

// Registry loads and renders text templates by path-derived name
// ("report/advisory" for assets/report/advisory.tmpl)
type Registry struct {
	templates map[string]*template.Template
	mu        sync.RWMutex
	fs        fs.FS
}

// NewRegistry creates a registry over a template filesystem
func NewRegistry(filesystem fs.FS) (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*template.Template),
		fs:        filesystem,
	}
	if err := r.loadAll(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewEmbeddedRegistry creates a registry with the compiled-in templates
func NewEmbeddedRegistry() (*Registry, error) {
	subFS, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, errors.Wrap(err, "failed to access embedded templates")
	}
	return NewRegistry(subFS)
}

// Render renders a template by name with data
func (r *Registry) Render(name string, data any) (string, error) {
	r.mu.RLock()
	tmpl, exists := r.templates[name]
	r.mu.RUnlock()

	if !exists {
		return "", errors.Newf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute template %s", name)
	}
	return buf.String(), nil
}

// Exists checks if a template is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.templates[name]
	return exists
}

// List returns all registered template names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

func (r *Registry) loadAll() error {
	return fs.WalkDir(r.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".tmpl" {
			return nil
		}

		content, err := fs.ReadFile(r.fs, path)
		if err != nil {
			return errors.Wrapf(err, "failed to read template %s", path)
		}

		name := strings.TrimSuffix(filepath.ToSlash(path), ".tmpl")
		tmpl, err := template.New(name).Funcs(funcMap()).Parse(string(content))
		if err != nil {
			return errors.Wrapf(err, "failed to parse template %s", name)
		}

		r.mu.Lock()
		r.templates[name] = tmpl
		r.mu.Unlock()
		return nil
	})
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
		"lower": strings.ToLower,

		"percent": func(v float64) float64 { return v * 100 },

		"comma":  func(v int64) string { return humanize.Comma(v) },
		"commaf": func(v float64) string { return humanize.CommafWithDigits(v, 0) },
		"reltime": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return humanize.Time(t)
		},
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}
}
