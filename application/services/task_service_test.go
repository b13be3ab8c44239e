package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/infrastructure/persistence/memory"
	pkgerrors "taskflow-backend/pkg/errors"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newTaskService() *TaskService {
	return NewTaskService(memory.NewTaskRepository(), nil, zap.NewNop())
}

func TestTaskService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	due := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	task, err := svc.Create(ctx, "user-1", CreateTaskInput{
		Title:       "Buy milk",
		Description: "2 litres",
		Priority:    intPtr(3),
		DueDate:     &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title().String())
	assert.False(t, task.Completed())

	fetched, err := svc.Get(ctx, "user-1", task.ID())
	require.NoError(t, err)
	assert.Equal(t, task.ID(), fetched.ID())
	require.NotNil(t, fetched.Priority())
	assert.Equal(t, 3, *fetched.Priority())
}

func TestTaskService_CreateRejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	_, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTaskService_CreateRejectsBadPriority(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	_, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "ok", Priority: intPtr(9)})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTaskService_GetForeignTaskIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	task, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "Private"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "user-2", task.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTaskService_UpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	task, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "Original", Description: "keep"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-1", task.ID(), UpdateTaskInput{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title().String())
	assert.Equal(t, "keep", updated.Description())
}

func TestTaskService_ToggleCompletion(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	task, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "Toggle me"})
	require.NoError(t, err)

	done, err := svc.ToggleCompletion(ctx, "user-1", task.ID(), true)
	require.NoError(t, err)
	assert.True(t, done.Completed())

	reopened, err := svc.ToggleCompletion(ctx, "user-1", task.ID(), false)
	require.NoError(t, err)
	assert.False(t, reopened.Completed())
}

func TestTaskService_ListStatusFilter(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	done, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "Done"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", CreateTaskInput{Title: "Open"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "user-1", done.ID(), UpdateTaskInput{Completed: boolPtr(true)})
	require.NoError(t, err)

	pending, err := svc.List(ctx, "user-1", ports.TaskFilter{Status: ports.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Open", pending[0].Title().String())

	completed, err := svc.List(ctx, "user-1", ports.TaskFilter{Status: ports.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)

	all, err := svc.List(ctx, "user-1", ports.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTaskService_ListRejectsBadStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	_, err := svc.List(ctx, "user-1", ports.TaskFilter{Status: "archived"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTaskService_DeleteForeignTaskIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()

	task, err := svc.Create(ctx, "user-1", CreateTaskInput{Title: "Private"})
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-2", task.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	// Owner still sees it, then deletes it
	_, err = svc.Get(ctx, "user-1", task.ID())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "user-1", task.ID()))

	_, err = svc.Get(ctx, "user-1", task.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}
