// Package views renders the tracker's HTML pages from plain page data.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"project-tracker/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	ProjectsPageName = "index.html"
	TasksPageName    = "project-tasks.html"
)

// Flash is a one-shot notice shown on the next rendered page.
// Category is "green" for success and "red" for warnings.
type Flash struct {
	Category string
	Message  string
}

// ProjectsPage is the data for the project list.
type ProjectsPage struct {
	Projects []models.Project
	Flashes  []Flash
}

// TasksPage is the data for a project's task list. Project is nil when
// the requested project does not exist.
type TasksPage struct {
	Project *models.Project
	Tasks   []models.Task
	Flashes []Flash
}

// Renderer writes a named page.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Templates renders the embedded html/template pages.
type Templates struct {
	pages map[string]*template.Template
}

// NewTemplates parses every page together with the shared layout.
func NewTemplates() (*Templates, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{ProjectsPageName, TasksPageName} {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Templates{pages: pages}, nil
}

// Render executes the named page into w.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, name, data)
}
