package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	"taskflow-backend/domain/events"
	pkgerrors "taskflow-backend/pkg/errors"
)

// TaskService is the single semantic core for task CRUD. Both the REST
// command/query handlers and the chat tool registry go through it, so
// ownership scoping and domain validation are enforced in exactly one place.
type TaskService struct {
	tasks     ports.TaskRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(tasks ports.TaskRepository, publisher ports.EventPublisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:     tasks,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTaskInput carries the fields for task creation. ID is optional; when
// empty a fresh identity is generated.
type CreateTaskInput struct {
	ID          string
	Title       string
	Description string
	Priority    *int
	DueDate     *time.Time
}

// UpdateTaskInput carries partial updates; nil fields are left untouched
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *int
	DueDate     *time.Time
}

// Create creates a task owned by userID
func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*entities.Task, error) {
	title, err := valueobjects.NewTaskTitle(input.Title)
	if err != nil {
		return nil, err
	}

	taskID := valueobjects.NewTaskID()
	if input.ID != "" {
		taskID, err = valueobjects.NewTaskIDFromString(input.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
	}

	task, err := entities.NewTaskWithID(taskID, userID, title, input.Description)
	if err != nil {
		return nil, err
	}
	if input.Priority != nil {
		if err := task.SetPriority(*input.Priority); err != nil {
			return nil, err
		}
	}
	if input.DueDate != nil {
		task.SetDueDate(*input.DueDate)
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, task)
	return task, nil
}

// Get retrieves a task owned by userID
func (s *TaskService) Get(ctx context.Context, userID string, taskID valueobjects.TaskID) (*entities.Task, error) {
	return s.tasks.GetByID(ctx, userID, taskID)
}

// List retrieves tasks owned by userID matching the filter
func (s *TaskService) List(ctx context.Context, userID string, filter ports.TaskFilter) ([]*entities.Task, error) {
	if filter.Status == "" {
		filter.Status = ports.StatusAll
	}
	if !filter.Status.Valid() {
		return nil, pkgerrors.NewValidationError("status must be one of: all, pending, completed")
	}
	return s.tasks.ListByUser(ctx, userID, filter)
}

// Update applies only the supplied fields to a task owned by userID
func (s *TaskService) Update(ctx context.Context, userID string, taskID valueobjects.TaskID, input UpdateTaskInput) (*entities.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := valueobjects.NewTaskTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		if err := task.Rename(title); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		if err := task.UpdateDescription(*input.Description); err != nil {
			return nil, err
		}
	}
	if input.Priority != nil {
		if err := task.SetPriority(*input.Priority); err != nil {
			return nil, err
		}
	}
	if input.DueDate != nil {
		task.SetDueDate(*input.DueDate)
	}
	if input.Completed != nil {
		task.SetCompleted(*input.Completed)
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, task)
	return task, nil
}

// ToggleCompletion flips or sets the completion flag of a task owned by userID
func (s *TaskService) ToggleCompletion(ctx context.Context, userID string, taskID valueobjects.TaskID, completed bool) (*entities.Task, error) {
	return s.Update(ctx, userID, taskID, UpdateTaskInput{Completed: &completed})
}

// Delete removes a task owned by userID
func (s *TaskService) Delete(ctx context.Context, userID string, taskID valueobjects.TaskID) error {
	// Resolve first so deletion of a foreign task reads as NotFound
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.NewTaskDeleted(taskID, userID, time.Now())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// publishEvents drains and publishes the task's collected domain events.
// Event delivery is advisory; failures are logged and never fail the
// operation that raised them.
func (s *TaskService) publishEvents(ctx context.Context, task *entities.Task) {
	if s.publisher == nil {
		return
	}
	for _, event := range task.DrainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("eventType", event.GetEventType()),
				zap.String("aggregateID", event.GetAggregateID()),
				zap.Error(err),
			)
		}
	}
}
