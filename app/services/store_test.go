package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the behaviour every Store backend must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create then get project", func(t *testing.T) {
		store := newStore(t)

		p, err := store.CreateProject(ctx, "Clean House")
		require.NoError(t, err)
		assert.NotZero(t, p.ID)

		got, err := store.GetProject(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Clean House", got.Title)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("get missing project is not an error", func(t *testing.T) {
		store := newStore(t)

		got, err := store.GetProject(ctx, 424242)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ids are distinct and listed in order", func(t *testing.T) {
		store := newStore(t)

		a, err := store.CreateProject(ctx, "A")
		require.NoError(t, err)
		b, err := store.CreateProject(ctx, "B")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		projects, err := store.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "A", projects[0].Title)
		assert.Equal(t, "B", projects[1].Title)
	})

	t.Run("list tasks for missing project is empty", func(t *testing.T) {
		store := newStore(t)

		tasks, err := store.ListTasksForProject(ctx, 424242)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("create task under missing project fails", func(t *testing.T) {
		store := newStore(t)

		task, err := store.CreateTask(ctx, "orphan", 424242)
		assert.Nil(t, task)
		assert.True(t, errors.Is(err, ErrProjectNotFound), "got %v", err)

		tasks, err := store.ListTasksForProject(ctx, 424242)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("get task carries project id", func(t *testing.T) {
		store := newStore(t)

		p, err := store.CreateProject(ctx, "Garden")
		require.NoError(t, err)
		task, err := store.CreateTask(ctx, "Water plants", p.ID)
		require.NoError(t, err)

		got, err := store.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p.ID, got.ProjectID)
		assert.Equal(t, "Water plants", got.Description)

		missing, err := store.GetTask(ctx, 424242)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("delete missing task", func(t *testing.T) {
		store := newStore(t)

		err := store.DeleteTask(ctx, 424242)
		assert.True(t, errors.Is(err, ErrTaskNotFound), "got %v", err)
	})

	t.Run("delete missing project", func(t *testing.T) {
		store := newStore(t)

		err := store.DeleteProject(ctx, 424242)
		assert.True(t, errors.Is(err, ErrProjectNotFound), "got %v", err)
	})

	t.Run("delete project cascades to its tasks only", func(t *testing.T) {
		store := newStore(t)

		doomed, err := store.CreateProject(ctx, "Doomed")
		require.NoError(t, err)
		kept, err := store.CreateProject(ctx, "Kept")
		require.NoError(t, err)

		var doomedTasks []int64
		for _, d := range []string{"one", "two", "three"} {
			task, err := store.CreateTask(ctx, d, doomed.ID)
			require.NoError(t, err)
			doomedTasks = append(doomedTasks, task.ID)
		}
		keptTask, err := store.CreateTask(ctx, "survivor", kept.ID)
		require.NoError(t, err)

		require.NoError(t, store.DeleteProject(ctx, doomed.ID))

		got, err := store.GetProject(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		tasks, err := store.ListTasksForProject(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
		for _, id := range doomedTasks {
			task, err := store.GetTask(ctx, id)
			require.NoError(t, err)
			assert.Nil(t, task, "task %d survived its project", id)
		}

		survivor, err := store.GetTask(ctx, keptTask.ID)
		require.NoError(t, err)
		require.NotNil(t, survivor)
		assert.Equal(t, kept.ID, survivor.ProjectID)
	})

	t.Run("round trip", func(t *testing.T) {
		store := newStore(t)

		p, err := store.CreateProject(ctx, "Clean House")
		require.NoError(t, err)

		task, err := store.CreateTask(ctx, "Clean bedroom", p.ID)
		require.NoError(t, err)

		tasks, err := store.ListTasksForProject(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Clean bedroom", tasks[0].Description)

		require.NoError(t, store.DeleteTask(ctx, task.ID))
		tasks, err = store.ListTasksForProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		require.NoError(t, store.DeleteProject(ctx, p.ID))
		projects, err := store.ListProjects(ctx)
		require.NoError(t, err)
		for _, listed := range projects {
			assert.NotEqual(t, p.ID, listed.ID)
		}
	})

	t.Run("ping", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Ping(ctx))
	})
}
