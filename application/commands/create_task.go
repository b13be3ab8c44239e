package commands

import (
	"strings"
	"time"

	pkgerrors "taskflow-backend/pkg/errors"
)

// CreateTaskCommand creates a new task for a user
type CreateTaskCommand struct {
	TaskID      string
	UserID      string
	Title       string
	Description string
	Priority    *int
	DueDate     *time.Time
}

// Validate checks command invariants before dispatch
func (c CreateTaskCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return pkgerrors.NewValidationError("title is required")
	}
	if c.Priority != nil && (*c.Priority < 1 || *c.Priority > 5) {
		return pkgerrors.NewValidationError("priority must be between 1 and 5")
	}
	return nil
}
