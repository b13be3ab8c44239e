package entities

import (
	"time"
	"unicode/utf8"

	"taskflow-backend/domain/config"
	"taskflow-backend/domain/core/valueobjects"
	"taskflow-backend/domain/events"
	pkgerrors "taskflow-backend/pkg/errors"
)

// Task is the main entity representing a tracked unit of work.
// This is a rich domain model with encapsulated business logic: fields are
// private and every mutation goes through a method that enforces invariants.
type Task struct {
	id          valueobjects.TaskID
	userID      string
	title       valueobjects.TaskTitle
	description string
	completed   bool
	priority    *int
	dueDate     *time.Time
	createdAt   time.Time
	updatedAt   time.Time

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewTask creates a new task with full business rule validation
func NewTask(userID string, title valueobjects.TaskTitle, description string) (*Task, error) {
	return NewTaskWithID(valueobjects.NewTaskID(), userID, title, description)
}

// NewTaskWithID creates a task under a caller-supplied identity. The HTTP
// layer pre-generates IDs so a create response can reference the task
// without a round trip through the command bus.
func NewTaskWithID(id valueobjects.TaskID, userID string, title valueobjects.TaskTitle, description string) (*Task, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("task ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if title.IsZero() {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now()
	task := &Task{
		id:          id,
		userID:      userID,
		title:       title,
		description: description,
		completed:   false,
		createdAt:   now,
		updatedAt:   now,
		events:      []events.DomainEvent{},
	}

	task.addEvent(events.NewTaskCreated(task.id, userID, title.String(), now))
	return task, nil
}

// ReconstructTask reconstructs a task from repository data with preserved timestamps
func ReconstructTask(
	id valueobjects.TaskID,
	userID string,
	title valueobjects.TaskTitle,
	description string,
	completed bool,
	priority *int,
	dueDate *time.Time,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		id:          id,
		userID:      userID,
		title:       title,
		description: description,
		completed:   completed,
		priority:    priority,
		dueDate:     dueDate,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		events:      []events.DomainEvent{},
	}
}

// Accessors

func (t *Task) ID() valueobjects.TaskID       { return t.id }
func (t *Task) UserID() string                { return t.userID }
func (t *Task) Title() valueobjects.TaskTitle { return t.title }
func (t *Task) Description() string           { return t.description }
func (t *Task) Completed() bool               { return t.completed }
func (t *Task) Priority() *int                { return t.priority }
func (t *Task) DueDate() *time.Time           { return t.dueDate }
func (t *Task) CreatedAt() time.Time          { return t.createdAt }
func (t *Task) UpdatedAt() time.Time          { return t.updatedAt }

// Rename changes the task title
func (t *Task) Rename(title valueobjects.TaskTitle) error {
	if title.IsZero() {
		return pkgerrors.NewValidationError("title cannot be empty")
	}
	t.title = title
	t.touch()
	return nil
}

// UpdateDescription replaces the task description
func (t *Task) UpdateDescription(description string) error {
	if err := validateDescription(description); err != nil {
		return err
	}
	t.description = description
	t.touch()
	return nil
}

// SetPriority sets the task priority within the allowed range
func (t *Task) SetPriority(priority int) error {
	cfg := config.DefaultDomainConfig()
	if priority < cfg.MinPriority || priority > cfg.MaxPriority {
		return pkgerrors.NewValidationError("priority must be between 1 and 5")
	}
	t.priority = &priority
	t.touch()
	return nil
}

// ClearPriority removes the task priority
func (t *Task) ClearPriority() {
	t.priority = nil
	t.touch()
}

// SetDueDate sets the task due date
func (t *Task) SetDueDate(due time.Time) {
	t.dueDate = &due
	t.touch()
}

// SetCompleted sets the completion flag and raises the matching event
func (t *Task) SetCompleted(completed bool) {
	if t.completed == completed {
		return
	}
	t.completed = completed
	t.touch()
	if completed {
		t.addEvent(events.NewTaskCompleted(t.id, t.userID, t.updatedAt))
	} else {
		t.addEvent(events.NewTaskReopened(t.id, t.userID, t.updatedAt))
	}
}

// Events returns the domain events collected since creation or the last drain
func (t *Task) Events() []events.DomainEvent {
	return t.events
}

// DrainEvents returns collected events and clears the buffer
func (t *Task) DrainEvents() []events.DomainEvent {
	drained := t.events
	t.events = []events.DomainEvent{}
	return drained
}

func (t *Task) touch() {
	t.updatedAt = time.Now()
}

func (t *Task) addEvent(event events.DomainEvent) {
	t.events = append(t.events, event)
}

func validateDescription(description string) error {
	cfg := config.DefaultDomainConfig()
	if utf8.RuneCountInString(description) > cfg.MaxDescriptionLen {
		return pkgerrors.NewValidationError("description exceeds maximum length")
	}
	return nil
}
