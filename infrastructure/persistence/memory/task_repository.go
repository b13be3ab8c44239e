// Package memory provides mutex-guarded in-memory implementations of the
// repository ports, used by tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"taskflow-backend/application/ports"
	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// TaskRepository implements ports.TaskRepository in memory
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*entities.Task
}

// NewTaskRepository creates an empty in-memory task repository
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*entities.Task)}
}

// Save stores a task keyed by ID. A stored task with the same ID but a
// different owner is left untouched and the save reads as NotFound.
func (r *TaskRepository) Save(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := task.ID().String()
	if existing, ok := r.tasks[key]; ok && existing.UserID() != task.UserID() {
		return pkgerrors.NewNotFoundError("task")
	}
	r.tasks[key] = task
	return nil
}

// GetByID retrieves a task owned by userID
func (r *TaskRepository) GetByID(ctx context.Context, userID string, id valueobjects.TaskID) (*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id.String()]
	if !ok || task.UserID() != userID {
		return nil, pkgerrors.NewNotFoundError("task")
	}
	return task, nil
}

// ListByUser retrieves tasks owned by userID matching the filter,
// newest first
func (r *TaskRepository) ListByUser(ctx context.Context, userID string, filter ports.TaskFilter) ([]*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []*entities.Task
	for _, task := range r.tasks {
		if task.UserID() != userID {
			continue
		}
		switch filter.Status {
		case ports.StatusPending:
			if task.Completed() {
				continue
			}
		case ports.StatusCompleted:
			if !task.Completed() {
				continue
			}
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt().After(tasks[j].CreatedAt())
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return nil, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// Delete removes a task owned by userID
func (r *TaskRepository) Delete(ctx context.Context, userID string, id valueobjects.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := id.String()
	task, ok := r.tasks[key]
	if !ok || task.UserID() != userID {
		return pkgerrors.NewNotFoundError("task")
	}
	delete(r.tasks, key)
	return nil
}
