package auth

import (
	"golang.org/x/crypto/bcrypt"

	pkgerrors "taskflow-backend/pkg/errors"
)

const bcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", pkgerrors.NewValidationError("password must be at least 8 characters")
	}
	// bcrypt truncates input beyond 72 bytes
	if len(password) > 72 {
		return "", pkgerrors.NewValidationError("password must be at most 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against its stored hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
