package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"project-tracker/app/models"
)

// GraphStore keeps projects and tasks in Neo4j as
// (:Task)-[:BELONGS_TO]->(:Project). Integer ids come from (:Sequence)
// nodes incremented in the same write transaction as the insert.
type GraphStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewGraphStore creates a GraphStore. An empty database uses the server default.
func NewGraphStore(driver neo4j.DriverWithContext, database string) *GraphStore {
	return &GraphStore{driver: driver, database: database}
}

func (s *GraphStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// EnsureSchema creates the uniqueness constraints on project and task ids.
func (s *GraphStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT project_id_unique IF NOT EXISTS FOR (p:Project) REQUIRE p.project_id IS UNIQUE",
		"CREATE CONSTRAINT task_id_unique IF NOT EXISTS FOR (t:Task) REQUIRE t.task_id IS UNIQUE",
		"CREATE CONSTRAINT sequence_name_unique IF NOT EXISTS FOR (s:Sequence) REQUIRE s.name IS UNIQUE",
	}
	for _, stmt := range statements {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("ensure neo4j schema: %w", err)
		}
	}
	return nil
}

// ListProjects returns all projects ordered by id.
func (s *GraphStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Project) RETURN p.project_id AS project_id, p.title AS title ORDER BY project_id",
			nil,
		)
		if err != nil {
			return nil, err
		}

		projects := []models.Project{}
		for res.Next(ctx) {
			p, err := projectFromRecord(res.Record())
			if err != nil {
				return nil, err
			}
			projects = append(projects, p)
		}
		return projects, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return result.([]models.Project), nil
}

// GetProject returns the project with the given id, or nil if it does not exist.
func (s *GraphStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Project {project_id: $id}) RETURN p.project_id AS project_id, p.title AS title",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return (*models.Project)(nil), res.Err()
		}
		p, err := projectFromRecord(res.Record())
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return result.(*models.Project), nil
}

// ListTasksForProject returns the project's tasks ordered by id.
func (s *GraphStore) ListTasksForProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task)-[:BELONGS_TO]->(p:Project {project_id: $id}) "+
				"RETURN t.task_id AS task_id, p.project_id AS project_id, t.description AS description "+
				"ORDER BY task_id",
			map[string]any{"id": projectID},
		)
		if err != nil {
			return nil, err
		}

		tasks := []models.Task{}
		for res.Next(ctx) {
			t, err := taskFromRecord(res.Record())
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
		return tasks, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks for project %d: %w", projectID, err)
	}
	return result.([]models.Task), nil
}

// GetTask returns the task with the given id, or nil if it does not exist.
func (s *GraphStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {task_id: $id})-[:BELONGS_TO]->(p:Project) "+
				"RETURN t.task_id AS task_id, p.project_id AS project_id, t.description AS description",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return (*models.Task)(nil), res.Err()
		}
		t, err := taskFromRecord(res.Record())
		if err != nil {
			return nil, err
		}
		return &t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return result.(*models.Task), nil
}

// CreateProject inserts a project and returns it with its assigned id.
func (s *GraphStore) CreateProject(ctx context.Context, title string) (*models.Project, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MERGE (seq:Sequence {name: 'project'}) ON CREATE SET seq.value = 0 "+
				"SET seq.value = seq.value + 1 "+
				"CREATE (p:Project {project_id: seq.value, title: $title}) "+
				"RETURN p.project_id AS project_id, p.title AS title",
			map[string]any{"title": title},
		)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		p, err := projectFromRecord(record)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return result.(*models.Project), nil
}

// CreateTask inserts a task linked to its project. It returns
// ErrProjectNotFound and creates nothing when the project does not exist.
func (s *GraphStore) CreateTask(ctx context.Context, description string, projectID int64) (*models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Project {project_id: $projectID}) "+
				"MERGE (seq:Sequence {name: 'task'}) ON CREATE SET seq.value = 0 "+
				"SET seq.value = seq.value + 1 "+
				"CREATE (t:Task {task_id: seq.value, description: $description})-[:BELONGS_TO]->(p) "+
				"RETURN t.task_id AS task_id, p.project_id AS project_id, t.description AS description",
			map[string]any{"projectID": projectID, "description": description},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrProjectNotFound
		}
		t, err := taskFromRecord(res.Record())
		if err != nil {
			return nil, err
		}
		return &t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return result.(*models.Task), nil
}

// DeleteTask removes a task and its relationship.
func (s *GraphStore) DeleteTask(ctx context.Context, id int64) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {task_id: $id}) DETACH DELETE t RETURN count(*) AS deleted",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		return nil, requireDeleted(ctx, res, ErrTaskNotFound)
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteProject removes a project and all of its tasks in one write transaction.
func (s *GraphStore) DeleteProject(ctx context.Context, id int64) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (p:Project {project_id: $id}) "+
				"OPTIONAL MATCH (t:Task)-[:BELONGS_TO]->(p) "+
				"WITH p, collect(t) AS tasks "+
				"FOREACH (t IN tasks | DETACH DELETE t) "+
				"DETACH DELETE p "+
				"RETURN count(*) AS deleted",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		return nil, requireDeleted(ctx, res, ErrProjectNotFound)
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Ping verifies the server is reachable.
func (s *GraphStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close closes the underlying driver.
func (s *GraphStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// requireDeleted reads the single "deleted" count and returns notFound when it is zero.
func requireDeleted(ctx context.Context, res neo4j.ResultWithContext, notFound error) error {
	record, err := res.Single(ctx)
	if err != nil {
		return err
	}
	deleted, _, err := neo4j.GetRecordValue[int64](record, "deleted")
	if err != nil {
		return err
	}
	if deleted == 0 {
		return notFound
	}
	return nil
}

func projectFromRecord(record *neo4j.Record) (models.Project, error) {
	id, _, err := neo4j.GetRecordValue[int64](record, "project_id")
	if err != nil {
		return models.Project{}, err
	}
	title, _, err := neo4j.GetRecordValue[string](record, "title")
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{ID: id, Title: title}, nil
}

func taskFromRecord(record *neo4j.Record) (models.Task, error) {
	id, _, err := neo4j.GetRecordValue[int64](record, "task_id")
	if err != nil {
		return models.Task{}, err
	}
	projectID, _, err := neo4j.GetRecordValue[int64](record, "project_id")
	if err != nil {
		return models.Task{}, err
	}
	description, _, err := neo4j.GetRecordValue[string](record, "description")
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{ID: id, ProjectID: projectID, Description: description}, nil
}

var _ Store = (*GraphStore)(nil)
