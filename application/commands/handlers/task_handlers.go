package handlers

import (
	"context"
	"fmt"

	"taskflow-backend/application/commands"
	"taskflow-backend/application/commands/bus"
	"taskflow-backend/application/services"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// CreateTaskHandler handles CreateTaskCommand
type CreateTaskHandler struct {
	tasks *services.TaskService
}

// NewCreateTaskHandler creates a new handler
func NewCreateTaskHandler(tasks *services.TaskService) *CreateTaskHandler {
	return &CreateTaskHandler{tasks: tasks}
}

// Handle implements bus.CommandHandler
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.CreateTaskCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	_, err := h.tasks.Create(ctx, c.UserID, services.CreateTaskInput{
		ID:          c.TaskID,
		Title:       c.Title,
		Description: c.Description,
		Priority:    c.Priority,
		DueDate:     c.DueDate,
	})
	return err
}

// UpdateTaskHandler handles UpdateTaskCommand
type UpdateTaskHandler struct {
	tasks *services.TaskService
}

// NewUpdateTaskHandler creates a new handler
func NewUpdateTaskHandler(tasks *services.TaskService) *UpdateTaskHandler {
	return &UpdateTaskHandler{tasks: tasks}
}

// Handle implements bus.CommandHandler
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.UpdateTaskCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	taskID, err := valueobjects.NewTaskIDFromString(c.TaskID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	_, err = h.tasks.Update(ctx, c.UserID, taskID, services.UpdateTaskInput{
		Title:       c.Title,
		Description: c.Description,
		Completed:   c.Completed,
		Priority:    c.Priority,
		DueDate:     c.DueDate,
	})
	return err
}

// ToggleTaskHandler handles ToggleTaskCommand
type ToggleTaskHandler struct {
	tasks *services.TaskService
}

// NewToggleTaskHandler creates a new handler
func NewToggleTaskHandler(tasks *services.TaskService) *ToggleTaskHandler {
	return &ToggleTaskHandler{tasks: tasks}
}

// Handle implements bus.CommandHandler
func (h *ToggleTaskHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.ToggleTaskCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	taskID, err := valueobjects.NewTaskIDFromString(c.TaskID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	_, err = h.tasks.ToggleCompletion(ctx, c.UserID, taskID, c.Completed)
	return err
}

// DeleteTaskHandler handles DeleteTaskCommand
type DeleteTaskHandler struct {
	tasks *services.TaskService
}

// NewDeleteTaskHandler creates a new handler
func NewDeleteTaskHandler(tasks *services.TaskService) *DeleteTaskHandler {
	return &DeleteTaskHandler{tasks: tasks}
}

// Handle implements bus.CommandHandler
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.DeleteTaskCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", cmd)
	}

	taskID, err := valueobjects.NewTaskIDFromString(c.TaskID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	return h.tasks.Delete(ctx, c.UserID, taskID)
}
