package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/application/queries"
	"taskflow-backend/application/services"
	"taskflow-backend/infrastructure/persistence/memory"
)

func newRegistryFixture(t *testing.T) (*Registry, *memory.TaskRepository) {
	t.Helper()
	logger := zap.NewNop()
	taskRepo := memory.NewTaskRepository()
	taskService := services.NewTaskService(taskRepo, nil, logger)

	catalog, err := NewCatalog()
	require.NoError(t, err)
	return NewRegistry(catalog, taskService, logger), taskRepo
}

func dispatch(t *testing.T, registry *Registry, userID, tool, arguments string) ToolResult {
	t.Helper()
	return registry.Dispatch(context.Background(), userID, ports.ToolCallRequest{
		ID:        "call-1",
		Name:      tool,
		Arguments: json.RawMessage(arguments),
	})
}

func createdTaskID(t *testing.T, result ToolResult) string {
	t.Helper()
	var view queries.TaskView
	require.NoError(t, json.Unmarshal(result.Data, &view))
	require.NotEmpty(t, view.ID)
	return view.ID
}

func TestDispatch_UnknownTool(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", "launch_rocket", `{}`)
	assert.True(t, result.IsError())
	assert.Contains(t, result.Error, "unknown tool")
}

func TestDispatch_SchemaRejectsMissingTitle(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", ToolCreateTask, `{"description":"no title"}`)
	assert.True(t, result.IsError())
	assert.Contains(t, result.Error, "invalid arguments")
}

func TestDispatch_SchemaRejectsUnknownField(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"ok","owner":"someone-else"}`)
	assert.True(t, result.IsError())
}

func TestDispatch_SchemaRejectsBadPriority(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"ok","priority":9}`)
	assert.True(t, result.IsError())
}

func TestDispatch_MalformedJSONArguments(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":`)
	assert.True(t, result.IsError())
}

func TestDispatch_CreateTask(t *testing.T) {
	registry, taskRepo := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", ToolCreateTask,
		`{"title":"Buy milk","description":"2 litres","priority":3,"due_date":"2026-09-05"}`)
	require.False(t, result.IsError(), "unexpected error: %s", result.Error)

	var view queries.TaskView
	require.NoError(t, json.Unmarshal(result.Data, &view))
	assert.Equal(t, "Buy milk", view.Title)
	assert.Equal(t, "2 litres", view.Description)
	require.NotNil(t, view.Priority)
	assert.Equal(t, 3, *view.Priority)
	require.NotNil(t, view.DueDate)

	tasks, err := taskRepo.ListByUser(context.Background(), "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestDispatch_CreateTaskBadDueDate(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	result := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"ok","due_date":"next tuesday"}`)
	assert.True(t, result.IsError())
	assert.Contains(t, result.Error, "due_date")
}

func TestDispatch_ListTasksScopedByUser(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Mine"}`)
	dispatch(t, registry, "user-2", ToolCreateTask, `{"title":"Theirs"}`)

	result := dispatch(t, registry, "user-1", ToolListTasks, `{}`)
	require.False(t, result.IsError())

	var view queries.TaskListView
	require.NoError(t, json.Unmarshal(result.Data, &view))
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "Mine", view.Tasks[0].Title)
}

func TestDispatch_ListTasksStatusFilter(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	created := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Done one"}`)
	taskID := createdTaskID(t, created)
	dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Open one"}`)
	dispatch(t, registry, "user-1", ToolUpdateTask, `{"task_id":"`+taskID+`","completed":true}`)

	result := dispatch(t, registry, "user-1", ToolListTasks, `{"status":"completed"}`)
	require.False(t, result.IsError())

	var view queries.TaskListView
	require.NoError(t, json.Unmarshal(result.Data, &view))
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "Done one", view.Tasks[0].Title)
}

func TestDispatch_UpdateTaskPartial(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	created := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Original","description":"keep me"}`)
	taskID := createdTaskID(t, created)

	result := dispatch(t, registry, "user-1", ToolUpdateTask, `{"task_id":"`+taskID+`","title":"Renamed"}`)
	require.False(t, result.IsError(), "unexpected error: %s", result.Error)

	var view queries.TaskView
	require.NoError(t, json.Unmarshal(result.Data, &view))
	assert.Equal(t, "Renamed", view.Title)
	assert.Equal(t, "keep me", view.Description)
}

func TestDispatch_UpdateTaskRequiresAField(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	created := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Task"}`)
	taskID := createdTaskID(t, created)

	result := dispatch(t, registry, "user-1", ToolUpdateTask, `{"task_id":"`+taskID+`"}`)
	assert.True(t, result.IsError())
}

func TestDispatch_UpdateForeignTaskIsNotFound(t *testing.T) {
	registry, _ := newRegistryFixture(t)

	created := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Private"}`)
	taskID := createdTaskID(t, created)

	result := dispatch(t, registry, "user-2", ToolUpdateTask, `{"task_id":"`+taskID+`","completed":true}`)
	assert.True(t, result.IsError())
	assert.Equal(t, "task not found", result.Error)
}

func TestDispatch_DeleteTask(t *testing.T) {
	registry, taskRepo := newRegistryFixture(t)

	created := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Remove me"}`)
	taskID := createdTaskID(t, created)

	result := dispatch(t, registry, "user-1", ToolDeleteTask, `{"task_id":"`+taskID+`"}`)
	require.False(t, result.IsError())

	tasks, err := taskRepo.ListByUser(context.Background(), "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDispatch_DeleteForeignTaskIsNotFound(t *testing.T) {
	registry, taskRepo := newRegistryFixture(t)

	created := dispatch(t, registry, "user-1", ToolCreateTask, `{"title":"Private"}`)
	taskID := createdTaskID(t, created)

	result := dispatch(t, registry, "user-2", ToolDeleteTask, `{"task_id":"`+taskID+`"}`)
	assert.True(t, result.IsError())
	assert.Equal(t, "task not found", result.Error)

	// Still there for the owner
	tasks, err := taskRepo.ListByUser(context.Background(), "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
