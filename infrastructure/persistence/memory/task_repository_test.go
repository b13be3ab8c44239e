package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

func newTask(t *testing.T, userID, title string) *entities.Task {
	t.Helper()
	taskTitle, err := valueobjects.NewTaskTitle(title)
	require.NoError(t, err)
	task, err := entities.NewTask(userID, taskTitle, "")
	require.NoError(t, err)
	return task
}

func TestTaskRepository_CrossOwnerSaveIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	mine := newTask(t, "user-1", "Buy milk")
	require.NoError(t, repo.Save(ctx, mine))

	// Same ID claimed by another user: the write is rejected, not absorbed
	title, err := valueobjects.NewTaskTitle("Hijacked")
	require.NoError(t, err)
	stolen, err := entities.NewTaskWithID(mine.ID(), "user-2", title, "")
	require.NoError(t, err)

	err = repo.Save(ctx, stolen)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	kept, err := repo.GetByID(ctx, "user-1", mine.ID())
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", kept.Title().String())
}

func TestTaskRepository_SameOwnerSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	task := newTask(t, "user-1", "Buy milk")
	require.NoError(t, repo.Save(ctx, task))

	title, err := valueobjects.NewTaskTitle("Buy oat milk")
	require.NoError(t, err)
	updated, err := entities.NewTaskWithID(task.ID(), "user-1", title, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, updated))

	kept, err := repo.GetByID(ctx, "user-1", task.ID())
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", kept.Title().String())
}
