package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"taskflow-backend/application/ports"
	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// TaskRepository implements ports.TaskRepository on PostgreSQL
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a PostgreSQL-backed task repository
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type taskRow struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Completed   bool       `db:"completed"`
	Priority    *int       `db:"priority"`
	DueDate     *time.Time `db:"due_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r taskRow) toEntity() (*entities.Task, error) {
	id, err := valueobjects.NewTaskIDFromString(r.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "stored task has invalid id")
	}
	title, err := valueobjects.NewTaskTitle(r.Title)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "stored task has invalid title")
	}
	return entities.ReconstructTask(
		id, r.UserID, title, r.Description,
		r.Completed, r.Priority, r.DueDate,
		r.CreatedAt, r.UpdatedAt,
	), nil
}

// Save upserts a task. Ownership is part of the conflict action's guard:
// a row with the same ID but a different owner is never overwritten, and
// the rejected write surfaces as NotFound.
func (r *TaskRepository) Save(ctx context.Context, task *entities.Task) error {
	const query = `
		INSERT INTO tasks (id, user_id, title, description, completed, priority, due_date, created_at, updated_at)
		VALUES (:id, :user_id, :title, :description, :completed, :priority, :due_date, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			completed = EXCLUDED.completed,
			priority = EXCLUDED.priority,
			due_date = EXCLUDED.due_date,
			updated_at = EXCLUDED.updated_at
		WHERE tasks.user_id = EXCLUDED.user_id`

	row := taskRow{
		ID:          task.ID().String(),
		UserID:      task.UserID(),
		Title:       task.Title().String(),
		Description: task.Description(),
		Completed:   task.Completed(),
		Priority:    task.Priority(),
		DueDate:     task.DueDate(),
		CreatedAt:   task.CreatedAt(),
		UpdatedAt:   task.UpdatedAt(),
	}
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return pkgerrors.NewDatabaseError("save task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("save task", err)
	}
	if affected == 0 {
		return pkgerrors.NewNotFoundError("task")
	}
	return nil
}

// GetByID retrieves a task owned by userID
func (r *TaskRepository) GetByID(ctx context.Context, userID string, id valueobjects.TaskID) (*entities.Task, error) {
	const query = `
		SELECT id, user_id, title, description, completed, priority, due_date, created_at, updated_at
		FROM tasks WHERE id = $1 AND user_id = $2`

	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, id.String(), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NewNotFoundError("task")
		}
		return nil, pkgerrors.NewDatabaseError("get task", err)
	}
	return row.toEntity()
}

// ListByUser retrieves tasks owned by userID matching the filter,
// newest first
func (r *TaskRepository) ListByUser(ctx context.Context, userID string, filter ports.TaskFilter) ([]*entities.Task, error) {
	query := `
		SELECT id, user_id, title, description, completed, priority, due_date, created_at, updated_at
		FROM tasks WHERE user_id = $1`
	args := []interface{}{userID}

	switch filter.Status {
	case ports.StatusPending:
		query += ` AND completed = false`
	case ports.StatusCompleted:
		query += ` AND completed = true`
	}
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $2`
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += ` OFFSET $3`
		}
	}

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, pkgerrors.NewDatabaseError("list tasks", err)
	}

	tasks := make([]*entities.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Delete removes a task owned by userID
func (r *TaskRepository) Delete(ctx context.Context, userID string, id valueobjects.TaskID) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id.String(), userID)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("delete task", err)
	}
	if affected == 0 {
		return pkgerrors.NewNotFoundError("task")
	}
	return nil
}
