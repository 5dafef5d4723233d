package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"project-tracker/app/database"
	"project-tracker/app/models"
)

// SQLStore keeps projects and tasks in a SQLite or PostgreSQL database.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQLStore wraps an open connection pool. The schema must already be migrated.
func NewSQLStore(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) q(query string) string {
	return database.Rebind(s.dialect, query)
}

// runInTx executes fn within a transaction. fn returning an error rolls
// the transaction back, otherwise it is committed.
func (s *SQLStore) runInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListProjects returns all projects ordered by id.
func (s *SQLStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT project_id, title FROM projects ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// GetProject returns the project with the given id, or nil if it does not exist.
func (s *SQLStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := s.db.QueryRowContext(ctx, s.q(`SELECT project_id, title FROM projects WHERE project_id = ?`), id).
		Scan(&p.ID, &p.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return &p, nil
}

// ListTasksForProject returns the project's tasks ordered by id. A missing
// project yields an empty slice.
func (s *SQLStore) ListTasksForProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT task_id, project_id, description FROM tasks WHERE project_id = ? ORDER BY task_id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for project %d: %w", projectID, err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Description); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns the task with the given id, or nil if it does not exist.
func (s *SQLStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, s.q(`SELECT task_id, project_id, description FROM tasks WHERE task_id = ?`), id).
		Scan(&t.ID, &t.ProjectID, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// CreateProject inserts a project and returns it with its assigned id.
func (s *SQLStore) CreateProject(ctx context.Context, title string) (*models.Project, error) {
	p := &models.Project{Title: title}
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, s.q(`INSERT INTO projects (title) VALUES (?) RETURNING project_id`), title).
			Scan(&p.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// CreateTask inserts a task under projectID. It returns ErrProjectNotFound
// and inserts nothing when the project does not exist.
func (s *SQLStore) CreateTask(ctx context.Context, description string, projectID int64) (*models.Task, error) {
	t := &models.Task{ProjectID: projectID, Description: description}
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockProject(ctx, tx, projectID); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			s.q(`INSERT INTO tasks (project_id, description) VALUES (?, ?) RETURNING task_id`), projectID, description).
			Scan(&t.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task. It returns ErrTaskNotFound when the task does not exist.
func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		var taskID int64
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT task_id FROM tasks WHERE task_id = ?`+database.ForUpdate(s.dialect)), id).Scan(&taskID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup task %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM tasks WHERE task_id = ?`), id); err != nil {
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteProject removes a project and every task that references it in one
// transaction. It returns ErrProjectNotFound when the project does not exist.
func (s *SQLStore) DeleteProject(ctx context.Context, id int64) error {
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockProject(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM tasks WHERE project_id = ?`), id); err != nil {
			return fmt.Errorf("delete tasks of project %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM projects WHERE project_id = ?`), id); err != nil {
			return fmt.Errorf("delete project %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// lockProject confirms the project exists inside tx, holding a row lock on
// PostgreSQL until the transaction ends.
func (s *SQLStore) lockProject(ctx context.Context, tx *sql.Tx, id int64) error {
	var projectID int64
	err := tx.QueryRowContext(ctx,
		s.q(`SELECT project_id FROM projects WHERE project_id = ?`+database.ForUpdate(s.dialect)), id).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup project %d: %w", id, err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLStore) Close(_ context.Context) error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)
