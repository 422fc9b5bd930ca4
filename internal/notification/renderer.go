package notification

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
)

const EmployeeCreatedTemplate = "EMPLOYEE_CREATED"

var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates/*.html
var templateFS embed.FS

// RenderError is returned for an unknown template or a failed variable binding.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

//go:generate mockgen -source=renderer.go -destination=mock/renderer_mock.go -package=mock
type Renderer interface {
	Render(name string, vars map[string]string) (string, error)
}

type htmlRenderer struct {
	templates map[string]*template.Template
}

// NewHTMLRenderer parses every embedded template up front. Templates are
// addressed by file name without extension, e.g. EMPLOYEE_CREATED.
func NewHTMLRenderer() (Renderer, error) {
	return newHTMLRenderer(templateFS, "templates")
}

func newHTMLRenderer(fsys fs.FS, dir string) (Renderer, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), path.Ext(file))
		tmpl, err := template.New(path.Base(file)).
			Option("missingkey=error").
			ParseFS(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", file, err)
		}
		templates[name] = tmpl
	}

	return &htmlRenderer{templates: templates}, nil
}

func (r *htmlRenderer) Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", &RenderError{Template: name, Err: ErrTemplateNotFound}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", &RenderError{Template: name, Err: err}
	}

	return buf.String(), nil
}
