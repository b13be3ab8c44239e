package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "taskflow-backend/pkg/errors"
)

// User represents an account that owns tasks and conversations.
// The credential is stored only as a salted hash; hashing itself lives in
// pkg/auth so the entity never sees a plaintext password.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a user with a normalized email and a precomputed hash
func NewUser(email, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.NewValidationError("email must be a valid address")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}

// NormalizeEmail lowercases and trims an email for case-insensitive uniqueness
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
