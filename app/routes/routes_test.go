package routes

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker/app/controllers"
	"project-tracker/app/logger"
	"project-tracker/app/middleware"
	"project-tracker/app/services"
	"project-tracker/app/views"
)

type testApp struct {
	handler http.Handler
	store   *services.SQLStore
	cookies []*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := services.NewTestSQLStore(t)
	tmpl, err := views.NewTemplates()
	require.NoError(t, err)
	log := logger.NewWithOutput("test", "error", &bytes.Buffer{})

	return &testApp{
		handler: NewHandler(controllers.NewProjectController(store, tmpl, log), log),
		store:   store,
	}
}

// do sends a request, replaying cookies set by earlier responses.
func (a *testApp) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		a.setCookie(c)
	}
	return rec
}

func (a *testApp) setCookie(c *http.Cookie) {
	kept := a.cookies[:0]
	for _, existing := range a.cookies {
		if existing.Name != c.Name {
			kept = append(kept, existing)
		}
	}
	a.cookies = kept
	if c.MaxAge >= 0 && c.Value != "" {
		a.cookies = append(a.cookies, c)
	}
}

func TestShowProjects_Empty(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects yet.")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAddProject_RedirectsAndFlashes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/add/project", url.Values{"project-title": {"Clean House"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	page := app.do(t, http.MethodGet, "/", nil)
	assert.Contains(t, page.Body.String(), "Clean House")
	assert.Contains(t, page.Body.String(), "Project added successfully")

	again := app.do(t, http.MethodGet, "/", nil)
	assert.NotContains(t, again.Body.String(), "Project added successfully", "flash must be shown once")
}

func TestAddProject_EmptyTitleInsertsNothing(t *testing.T) {
	app := newTestApp(t)

	for _, title := range []string{"", "   "} {
		rec := app.do(t, http.MethodPost, "/add/project", url.Values{"project-title": {title}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	}

	projects, err := app.store.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)

	page := app.do(t, http.MethodGet, "/", nil)
	assert.Contains(t, page.Body.String(), "Enter a title for your new project")
}

func TestAddTask(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	p, err := app.store.CreateProject(ctx, "Garden")
	require.NoError(t, err)
	target := fmt.Sprintf("/project/%d", p.ID)

	rec := app.do(t, http.MethodPost, fmt.Sprintf("/add/task/%d", p.ID), url.Values{"task-description": {"Water plants"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, target, rec.Header().Get("Location"))

	page := app.do(t, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Water plants")
	assert.Contains(t, page.Body.String(), "Task added successfully")
}

func TestAddTask_EmptyDescription(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	p, err := app.store.CreateProject(ctx, "Garden")
	require.NoError(t, err)

	rec := app.do(t, http.MethodPost, fmt.Sprintf("/add/task/%d", p.ID), url.Values{"task-description": {""}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, fmt.Sprintf("/project/%d", p.ID), rec.Header().Get("Location"))

	tasks, err := app.store.ListTasksForProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAddTask_MissingProject(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/add/task/999", url.Values{"task-description": {"orphan"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	tasks, err := app.store.ListTasksForProject(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	page := app.do(t, http.MethodGet, "/", nil)
	assert.Contains(t, page.Body.String(), "Project not found")
}

func TestShowTasks_MissingProjectRenders(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/project/999", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Project not found")
}

func TestDeleteTask_RedirectsToFormerProject(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	p, err := app.store.CreateProject(ctx, "Clean House")
	require.NoError(t, err)
	task, err := app.store.CreateTask(ctx, "Clean bedroom", p.ID)
	require.NoError(t, err)

	rec := app.do(t, http.MethodPost, fmt.Sprintf("/delete/task/%d", task.ID), nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, fmt.Sprintf("/project/%d", p.ID), rec.Header().Get("Location"))

	gone, err := app.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteTask_Missing(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/delete/task/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProject_Cascades(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	p, err := app.store.CreateProject(ctx, "Move")
	require.NoError(t, err)
	_, err = app.store.CreateTask(ctx, "Pack boxes", p.ID)
	require.NoError(t, err)

	rec := app.do(t, http.MethodPost, fmt.Sprintf("/delete/project/%d", p.ID), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	tasks, err := app.store.ListTasksForProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	page := app.do(t, http.MethodGet, "/", nil)
	assert.NotContains(t, page.Body.String(), "Move")
}

func TestDeleteProject_Missing(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/delete/project/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_RejectWrongMethodAndBadIDs(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusMethodNotAllowed, app.do(t, http.MethodGet, "/add/project", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, app.do(t, http.MethodGet, "/delete/project/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/project/abc", nil).Code)
}

func TestRoundTripThroughHTTP(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	app.do(t, http.MethodPost, "/add/project", url.Values{"project-title": {"Clean House"}})
	projects, err := app.store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	p := projects[0]

	app.do(t, http.MethodPost, fmt.Sprintf("/add/task/%d", p.ID), url.Values{"task-description": {"Clean bedroom"}})
	tasks, err := app.store.ListTasksForProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Clean bedroom", tasks[0].Description)

	rec := app.do(t, http.MethodPost, fmt.Sprintf("/delete/task/%d", tasks[0].ID), nil)
	assert.Equal(t, fmt.Sprintf("/project/%d", p.ID), rec.Header().Get("Location"))
	tasks, err = app.store.ListTasksForProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	app.do(t, http.MethodPost, fmt.Sprintf("/delete/project/%d", p.ID), nil)
	projects, err = app.store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	health := app.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "ok", health.Body.String())

	app.do(t, http.MethodGet, "/", nil)
	metrics := app.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "http_requests_total")
}
