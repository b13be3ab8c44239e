package handlers

import (
	"context"
	"fmt"

	"taskflow-backend/application/ports"
	"taskflow-backend/application/queries"
	"taskflow-backend/application/queries/bus"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// GetTaskHandler handles GetTaskQuery
type GetTaskHandler struct {
	tasks ports.TaskRepository
}

// NewGetTaskHandler creates a new handler
func NewGetTaskHandler(tasks ports.TaskRepository) *GetTaskHandler {
	return &GetTaskHandler{tasks: tasks}
}

// Handle implements bus.QueryHandler
func (h *GetTaskHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetTaskQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	taskID, err := valueobjects.NewTaskIDFromString(q.TaskID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	task, err := h.tasks.GetByID(ctx, q.UserID, taskID)
	if err != nil {
		return nil, err
	}
	return queries.NewTaskView(task), nil
}

// ListTasksHandler handles ListTasksQuery
type ListTasksHandler struct {
	tasks ports.TaskRepository
}

// NewListTasksHandler creates a new handler
func NewListTasksHandler(tasks ports.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{tasks: tasks}
}

// Handle implements bus.QueryHandler
func (h *ListTasksHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ListTasksQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	status := ports.StatusFilter(q.Status)
	if status == "" {
		status = ports.StatusAll
	}
	if !status.Valid() {
		return nil, pkgerrors.NewValidationError("status must be one of: all, pending, completed")
	}

	tasks, err := h.tasks.ListByUser(ctx, q.UserID, ports.TaskFilter{
		Status: status,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}

	views := make([]queries.TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, queries.NewTaskView(task))
	}
	return queries.TaskListView{Tasks: views, Total: len(views)}, nil
}
