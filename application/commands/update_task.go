package commands

import (
	"strings"
	"time"

	pkgerrors "taskflow-backend/pkg/errors"
)

// UpdateTaskCommand applies partial field updates to a task.
// Nil pointers mean "leave unchanged".
type UpdateTaskCommand struct {
	UserID      string
	TaskID      string
	Title       *string
	Description *string
	Completed   *bool
	Priority    *int
	DueDate     *time.Time
}

// Validate checks command invariants before dispatch
func (c UpdateTaskCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.TaskID == "" {
		return pkgerrors.NewValidationError("task ID is required")
	}
	if c.Title != nil && strings.TrimSpace(*c.Title) == "" {
		return pkgerrors.NewValidationError("title cannot be empty")
	}
	if c.Priority != nil && (*c.Priority < 1 || *c.Priority > 5) {
		return pkgerrors.NewValidationError("priority must be between 1 and 5")
	}
	if c.Title == nil && c.Description == nil && c.Completed == nil && c.Priority == nil && c.DueDate == nil {
		return pkgerrors.NewValidationError("at least one field must be supplied")
	}
	return nil
}

// ToggleTaskCommand sets the completion flag of a task
type ToggleTaskCommand struct {
	UserID    string
	TaskID    string
	Completed bool
}

// Validate checks command invariants before dispatch
func (c ToggleTaskCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.TaskID == "" {
		return pkgerrors.NewValidationError("task ID is required")
	}
	return nil
}
