package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML document of projects and their task descriptions:
//
//	projects:
//	  - title: Clean House
//	    tasks:
//	      - Clean bedroom
type Fixture struct {
	Projects []FixtureProject `yaml:"projects"`
}

type FixtureProject struct {
	Title string   `yaml:"title"`
	Tasks []string `yaml:"tasks"`
}

// DefaultFixture is the sample data inserted when no fixture file is given.
var DefaultFixture = Fixture{
	Projects: []FixtureProject{
		{Title: "Clean House", Tasks: []string{"Clean bedroom"}},
	},
}

// LoadFixture decodes a YAML fixture, rejecting unknown fields and empty
// titles or descriptions.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i, p := range f.Projects {
		if p.Title == "" {
			return nil, fmt.Errorf("fixture project %d: empty title", i)
		}
		for j, d := range p.Tasks {
			if d == "" {
				return nil, fmt.Errorf("fixture project %q task %d: empty description", p.Title, j)
			}
		}
	}
	return &f, nil
}

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Projects int
	Tasks    int
}

// Seed inserts every project of f followed by its tasks. It stops at the
// first failure; rows inserted before it stay committed.
func Seed(ctx context.Context, store Store, f *Fixture) (SeedResult, error) {
	var res SeedResult
	for _, fp := range f.Projects {
		p, err := store.CreateProject(ctx, fp.Title)
		if err != nil {
			return res, err
		}
		res.Projects++

		for _, description := range fp.Tasks {
			if _, err := store.CreateTask(ctx, description, p.ID); err != nil {
				return res, err
			}
			res.Tasks++
		}
	}
	return res, nil
}
