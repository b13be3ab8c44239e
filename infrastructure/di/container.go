// Package di wires the application's dependency graph.
package di

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskflow-backend/application/agent"
	"taskflow-backend/application/commands/bus"
	"taskflow-backend/application/ports"
	querybus "taskflow-backend/application/queries/bus"
	"taskflow-backend/application/services"
	"taskflow-backend/infrastructure/config"
	"taskflow-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	DB               *sqlx.DB
	TaskRepo         ports.TaskRepository
	UserRepo         ports.UserRepository
	ConversationRepo ports.ConversationRepository
	EventBus         ports.EventBus
	JWTManager       *auth.JWTManager
	TaskService      *services.TaskService
	AuthService      *services.AuthService
	Gateway          ports.ReasoningGateway
	Catalog          *agent.Catalog
	Registry         *agent.Registry
	Orchestrator     *agent.Orchestrator
	CommandBus       *bus.CommandBus
	QueryBus         *querybus.QueryBus
}

// Shutdown releases held resources
func (c *Container) Shutdown() error {
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return err
}
