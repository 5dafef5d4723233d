package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"project-tracker/app/middleware"
	"project-tracker/app/services"
	"project-tracker/app/views"
)

// Form field names posted by the templates.
const (
	fieldProjectTitle    = "project-title"
	fieldTaskDescription = "task-description"
)

// ProjectController handles HTTP requests for projects and their tasks.
// Every mutating handler answers with a redirect to a GET view.
type ProjectController struct {
	Store services.Store
	Views views.Renderer
	Log   logrus.FieldLogger
}

// NewProjectController creates a new ProjectController.
func NewProjectController(store services.Store, renderer views.Renderer, log logrus.FieldLogger) *ProjectController {
	return &ProjectController{Store: store, Views: renderer, Log: log}
}

func (c *ProjectController) entry(r *http.Request, handler string) *logrus.Entry {
	return c.Log.WithFields(logrus.Fields{
		"component":  "http_handler",
		"handler":    handler,
		"request_id": middleware.GetRequestID(r.Context()),
	})
}

// ShowProjects handles GET /.
func (c *ProjectController) ShowProjects(w http.ResponseWriter, r *http.Request) {
	log := c.entry(r, "ShowProjects")

	projects, err := c.Store.ListProjects(r.Context())
	if err != nil {
		c.fail(w, log, err, "failed to list projects")
		return
	}

	c.render(w, log, views.ProjectsPageName, views.ProjectsPage{
		Projects: projects,
		Flashes:  popFlashes(w, r),
	})
}

// ShowTasks handles GET /project/{project_id}. A missing project still
// renders, with no project and no tasks.
func (c *ProjectController) ShowTasks(w http.ResponseWriter, r *http.Request) {
	log := c.entry(r, "ShowTasks")

	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}

	project, err := c.Store.GetProject(r.Context(), projectID)
	if err != nil {
		c.fail(w, log, err, "failed to get project")
		return
	}
	tasks, err := c.Store.ListTasksForProject(r.Context(), projectID)
	if err != nil {
		c.fail(w, log, err, "failed to list tasks")
		return
	}
	if project == nil {
		log.WithField("project_id", projectID).Debug("project not found")
	}

	c.render(w, log, views.TasksPageName, views.TasksPage{
		Project: project,
		Tasks:   tasks,
		Flashes: popFlashes(w, r),
	})
}

// AddProject handles POST /add/project.
func (c *ProjectController) AddProject(w http.ResponseWriter, r *http.Request) {
	log := c.entry(r, "AddProject")

	title := strings.TrimSpace(r.PostFormValue(fieldProjectTitle))
	if title == "" {
		addFlash(w, r, flashWarning, "Enter a title for your new project")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	project, err := c.Store.CreateProject(r.Context(), title)
	if err != nil {
		c.fail(w, log, err, "failed to create project")
		return
	}

	log.WithField("project_id", project.ID).Info("project created")
	addFlash(w, r, flashSuccess, "Project added successfully")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddTask handles POST /add/task/{project_id}.
func (c *ProjectController) AddTask(w http.ResponseWriter, r *http.Request) {
	log := c.entry(r, "AddTask")

	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}
	target := projectURL(projectID)

	description := strings.TrimSpace(r.PostFormValue(fieldTaskDescription))
	if description == "" {
		addFlash(w, r, flashWarning, "Enter a description for your new task")
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	task, err := c.Store.CreateTask(r.Context(), description, projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		log.WithField("project_id", projectID).Warn("task for missing project")
		addFlash(w, r, flashWarning, "Project not found")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		c.fail(w, log, err, "failed to create task")
		return
	}

	log.WithFields(logrus.Fields{"project_id": projectID, "task_id": task.ID}).Info("task created")
	addFlash(w, r, flashSuccess, "Task added successfully")
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// DeleteTask handles POST /delete/task/{task_id}. The owning project id is
// read before the delete so the redirect can target it afterwards.
func (c *ProjectController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := c.entry(r, "DeleteTask")

	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	task, err := c.Store.GetTask(r.Context(), taskID)
	if err != nil {
		c.fail(w, log, err, "failed to get task")
		return
	}
	if task == nil {
		log.WithField("task_id", taskID).Warn("task not found for deletion")
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	projectID := task.ProjectID

	if err := c.Store.DeleteTask(r.Context(), taskID); err != nil {
		c.fail(w, log, err, "failed to delete task")
		return
	}

	log.WithFields(logrus.Fields{"project_id": projectID, "task_id": taskID}).Info("task deleted")
	http.Redirect(w, r, projectURL(projectID), http.StatusSeeOther)
}

// DeleteProject handles POST /delete/project/{project_id}.
func (c *ProjectController) DeleteProject(w http.ResponseWriter, r *http.Request) {
	log := c.entry(r, "DeleteProject")

	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}

	if err := c.Store.DeleteProject(r.Context(), projectID); err != nil {
		c.fail(w, log, err, "failed to delete project")
		return
	}

	log.WithField("project_id", projectID).Info("project deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health handles GET /healthz.
func (c *ProjectController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.Store.Ping(r.Context()); err != nil {
		c.entry(r, "Health").WithError(err).Warn("store unreachable")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// render buffers the page so a template error can still become a 500.
func (c *ProjectController) render(w http.ResponseWriter, log *logrus.Entry, name string, data any) {
	var buf bytes.Buffer
	if err := c.Views.Render(&buf, name, data); err != nil {
		log.WithError(err).WithField("template", name).Error("failed to render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// fail maps not-found errors to 404 and everything else to 500.
func (c *ProjectController) fail(w http.ResponseWriter, log *logrus.Entry, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		log.WithError(err).Warn(msg)
		http.Error(w, "project not found", http.StatusNotFound)
	case errors.Is(err, services.ErrTaskNotFound):
		log.WithError(err).Warn(msg)
		http.Error(w, "task not found", http.StatusNotFound)
	default:
		log.WithError(err).Error(msg)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// pathID parses a numeric mux variable, answering 404 when it is unusable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func projectURL(id int64) string {
	return fmt.Sprintf("/project/%d", id)
}
