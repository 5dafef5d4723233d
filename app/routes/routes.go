package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"project-tracker/app/controllers"
	"project-tracker/app/middleware"
)

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, projectController *controllers.ProjectController) {
	router.Use(middleware.Metrics)

	router.HandleFunc("/", projectController.ShowProjects).Methods(http.MethodGet)
	router.HandleFunc("/project/{project_id:[0-9]+}", projectController.ShowTasks).Methods(http.MethodGet)
	router.HandleFunc("/add/project", projectController.AddProject).Methods(http.MethodPost)
	router.HandleFunc("/add/task/{project_id:[0-9]+}", projectController.AddTask).Methods(http.MethodPost)
	router.HandleFunc("/delete/task/{task_id:[0-9]+}", projectController.DeleteTask).Methods(http.MethodPost)
	router.HandleFunc("/delete/project/{project_id:[0-9]+}", projectController.DeleteProject).Methods(http.MethodPost)

	router.HandleFunc("/healthz", projectController.Health).Methods(http.MethodGet)
	router.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)
}

// NewHandler builds the router and wraps it with request id, security
// header and logging middleware.
func NewHandler(projectController *controllers.ProjectController, log logrus.FieldLogger) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, projectController)

	var handler http.Handler = router
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
