package models

// Task represents a task that belongs to exactly one project.
type Task struct {
	ID          int64  `json:"task_id" yaml:"task_id"`
	ProjectID   int64  `json:"project_id" yaml:"project_id"`
	Description string `json:"description" yaml:"description"`
}
