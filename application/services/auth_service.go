package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/domain/core/entities"
	"taskflow-backend/pkg/auth"
	pkgerrors "taskflow-backend/pkg/errors"
)

// AuthService handles account registration and credential verification
type AuthService struct {
	users  ports.UserRepository
	tokens *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users ports.UserRepository, tokens *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult carries the authenticated user and their session token
type AuthResult struct {
	User  *entities.User
	Token string
}

// Register creates an account and returns a session token
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = entities.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.NewValidationError("email is not valid")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := entities.NewUser(email, hash)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("userId", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns a session token. Missing accounts
// and wrong passwords produce the same Unauthorized error so login attempts
// cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if !user.Active {
		return nil, pkgerrors.NewUnauthorizedError("account is disabled")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, pkgerrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}
