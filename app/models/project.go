package models

// Project groups tasks. Deleting a project deletes all of its tasks.
type Project struct {
	ID    int64  `json:"project_id" yaml:"project_id"`
	Title string `json:"title" yaml:"title"`
}
