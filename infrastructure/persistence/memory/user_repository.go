package memory

import (
	"context"
	"sync"

	"taskflow-backend/domain/core/entities"
	pkgerrors "taskflow-backend/pkg/errors"
)

// UserRepository implements ports.UserRepository in memory
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entities.User
	byEmail map[string]*entities.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entities.User),
		byEmail: make(map[string]*entities.User),
	}
}

// Create persists a new user; duplicate emails surface as Conflict errors
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := entities.NormalizeEmail(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return pkgerrors.NewConflictError("email is already registered")
	}
	r.byID[user.ID] = user
	r.byEmail[email] = user
	return nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[entities.NormalizeEmail(email)]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return user, nil
}
