package events

import (
	"time"

	"taskflow-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Task event types
const (
	EventTypeTaskCreated   = "task.created"
	EventTypeTaskCompleted = "task.completed"
	EventTypeTaskReopened  = "task.reopened"
	EventTypeTaskDeleted   = "task.deleted"
)

// TaskCreated is raised when a new task is created
type TaskCreated struct {
	BaseEvent
	TaskID valueobjects.TaskID `json:"task_id"`
	UserID string              `json:"user_id"`
	Title  string              `json:"title"`
}

// NewTaskCreated creates a TaskCreated event
func NewTaskCreated(taskID valueobjects.TaskID, userID, title string, timestamp time.Time) TaskCreated {
	return TaskCreated{
		BaseEvent: BaseEvent{
			AggregateID: taskID.String(),
			EventType:   EventTypeTaskCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		TaskID: taskID,
		UserID: userID,
		Title:  title,
	}
}

// TaskCompleted is raised when a task is marked complete
type TaskCompleted struct {
	BaseEvent
	TaskID valueobjects.TaskID `json:"task_id"`
	UserID string              `json:"user_id"`
}

// NewTaskCompleted creates a TaskCompleted event
func NewTaskCompleted(taskID valueobjects.TaskID, userID string, timestamp time.Time) TaskCompleted {
	return TaskCompleted{
		BaseEvent: BaseEvent{
			AggregateID: taskID.String(),
			EventType:   EventTypeTaskCompleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		TaskID: taskID,
		UserID: userID,
	}
}

// TaskReopened is raised when a completed task is marked pending again
type TaskReopened struct {
	BaseEvent
	TaskID valueobjects.TaskID `json:"task_id"`
	UserID string              `json:"user_id"`
}

// NewTaskReopened creates a TaskReopened event
func NewTaskReopened(taskID valueobjects.TaskID, userID string, timestamp time.Time) TaskReopened {
	return TaskReopened{
		BaseEvent: BaseEvent{
			AggregateID: taskID.String(),
			EventType:   EventTypeTaskReopened,
			Timestamp:   timestamp,
			Version:     1,
		},
		TaskID: taskID,
		UserID: userID,
	}
}

// TaskDeleted is raised when a task is removed
type TaskDeleted struct {
	BaseEvent
	TaskID valueobjects.TaskID `json:"task_id"`
	UserID string              `json:"user_id"`
}

// NewTaskDeleted creates a TaskDeleted event
func NewTaskDeleted(taskID valueobjects.TaskID, userID string, timestamp time.Time) TaskDeleted {
	return TaskDeleted{
		BaseEvent: BaseEvent{
			AggregateID: taskID.String(),
			EventType:   EventTypeTaskDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		TaskID: taskID,
		UserID: userID,
	}
}
