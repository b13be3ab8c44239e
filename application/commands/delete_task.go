package commands

import (
	pkgerrors "taskflow-backend/pkg/errors"
)

// DeleteTaskCommand removes a task owned by the acting user
type DeleteTaskCommand struct {
	UserID string
	TaskID string
}

// Validate checks command invariants before dispatch
func (c DeleteTaskCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if c.TaskID == "" {
		return pkgerrors.NewValidationError("task ID is required")
	}
	return nil
}
