package queries

import (
	"time"

	"taskflow-backend/domain/core/entities"
	pkgerrors "taskflow-backend/pkg/errors"
)

// GetTaskQuery retrieves a single task owned by the acting user
type GetTaskQuery struct {
	UserID string
	TaskID string
}

// Validate checks query invariants before dispatch
func (q GetTaskQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.TaskID == "" {
		return pkgerrors.NewValidationError("task ID is required")
	}
	return nil
}

// ListTasksQuery retrieves tasks owned by the acting user
type ListTasksQuery struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

// Validate checks query invariants before dispatch
func (q ListTasksQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return pkgerrors.NewValidationError("limit and offset must be non-negative")
	}
	return nil
}

// TaskView is the read model returned by task queries
type TaskView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    *int       `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskListView is the read model for task listings
type TaskListView struct {
	Tasks []TaskView `json:"tasks"`
	Total int        `json:"total"`
}

// NewTaskView maps a task entity into its read model
func NewTaskView(task *entities.Task) TaskView {
	return TaskView{
		ID:          task.ID().String(),
		Title:       task.Title().String(),
		Description: task.Description(),
		Completed:   task.Completed(),
		Priority:    task.Priority(),
		DueDate:     task.DueDate(),
		CreatedAt:   task.CreatedAt(),
		UpdatedAt:   task.UpdatedAt(),
	}
}
