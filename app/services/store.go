// Package services implements the persistence layer for projects and tasks.
//
// Two backends satisfy Store: SQLStore (SQLite or PostgreSQL through
// database/sql) and GraphStore (Neo4j). Both run every mutation in a single
// transaction, refuse to create tasks under missing projects, and delete a
// project together with all of its tasks.
package services

import (
	"context"
	"errors"

	"project-tracker/app/models"
)

var (
	// ErrProjectNotFound is returned when a project id does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// Store is the persistence contract used by the request handlers.
// Lookups of absent rows return (nil, nil); mutations on absent rows
// return ErrProjectNotFound or ErrTaskNotFound.
type Store interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListTasksForProject(ctx context.Context, projectID int64) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)

	CreateProject(ctx context.Context, title string) (*models.Project, error)
	CreateTask(ctx context.Context, description string, projectID int64) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	DeleteProject(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
