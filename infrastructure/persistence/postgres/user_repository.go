package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"taskflow-backend/domain/core/entities"
	pkgerrors "taskflow-backend/pkg/errors"
)

// Postgres error code for unique constraint violations
const pqUniqueViolation = "23505"

// UserRepository implements ports.UserRepository on PostgreSQL
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a PostgreSQL-backed user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toEntity() *entities.User {
	return &entities.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

// Create persists a new user; duplicate emails surface as Conflict errors
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, active, created_at)
		VALUES (:id, :email, :password_hash, :active, :created_at)`

	row := userRow{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return pkgerrors.NewConflictError("email is already registered")
		}
		return pkgerrors.NewDatabaseError("create user", err)
	}
	return nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	const query = `SELECT id, email, password_hash, active, created_at FROM users WHERE email = $1`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, entities.NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NewNotFoundError("user")
		}
		return nil, pkgerrors.NewDatabaseError("get user by email", err)
	}
	return row.toEntity(), nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	const query = `SELECT id, email, password_hash, active, created_at FROM users WHERE id = $1`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NewNotFoundError("user")
		}
		return nil, pkgerrors.NewDatabaseError("get user by id", err)
	}
	return row.toEntity(), nil
}
