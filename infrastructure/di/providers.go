package di

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskflow-backend/application/agent"
	"taskflow-backend/application/commands"
	"taskflow-backend/application/commands/bus"
	commandhandlers "taskflow-backend/application/commands/handlers"
	"taskflow-backend/application/ports"
	"taskflow-backend/application/queries"
	querybus "taskflow-backend/application/queries/bus"
	queryhandlers "taskflow-backend/application/queries/handlers"
	"taskflow-backend/application/services"
	"taskflow-backend/domain/events"
	"taskflow-backend/infrastructure/config"
	"taskflow-backend/infrastructure/messaging"
	"taskflow-backend/infrastructure/persistence/postgres"
	"taskflow-backend/infrastructure/reasoning"
	"taskflow-backend/pkg/auth"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDatabase opens the PostgreSQL pool and ensures the schema exists
func ProvideDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ProvideTaskRepository creates the task repository
func ProvideTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return postgres.NewTaskRepository(db)
}

// ProvideUserRepository creates the user repository
func ProvideUserRepository(db *sqlx.DB) ports.UserRepository {
	return postgres.NewUserRepository(db)
}

// ProvideConversationRepository creates the conversation repository
func ProvideConversationRepository(db *sqlx.DB) ports.ConversationRepository {
	return postgres.NewConversationRepository(db)
}

// ProvideEventBus creates the in-process event bus with the logging
// subscriber attached to every task event type
func ProvideEventBus(logger *zap.Logger) ports.EventBus {
	eventBus := messaging.NewInProcessEventBus(logger)
	auditor := messaging.NewLoggingEventHandler(logger)
	for _, eventType := range []string{
		events.EventTypeTaskCreated,
		events.EventTypeTaskCompleted,
		events.EventTypeTaskReopened,
		events.EventTypeTaskDeleted,
	} {
		_ = eventBus.Subscribe(eventType, auditor)
	}
	return eventBus
}

// ProvideJWTManager creates the token manager
func ProvideJWTManager(cfg *config.Config) (*auth.JWTManager, error) {
	return auth.NewJWTManager(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		TokenTTL:  cfg.TokenTTL,
	})
}

// ProvideTaskService creates the task service
func ProvideTaskService(tasks ports.TaskRepository, eventBus ports.EventBus, logger *zap.Logger) *services.TaskService {
	return services.NewTaskService(tasks, eventBus, logger)
}

// ProvideAuthService creates the auth service
func ProvideAuthService(users ports.UserRepository, tokens *auth.JWTManager, logger *zap.Logger) *services.AuthService {
	return services.NewAuthService(users, tokens, logger)
}

// ProvideReasoningGateway creates the chat completions gateway
func ProvideReasoningGateway(cfg *config.Config, logger *zap.Logger) ports.ReasoningGateway {
	return reasoning.NewOpenAIGateway(cfg, logger)
}

// ProvideCatalog compiles the tool catalog
func ProvideCatalog() (*agent.Catalog, error) {
	return agent.NewCatalog()
}

// ProvideRegistry creates the tool registry
func ProvideRegistry(catalog *agent.Catalog, tasks *services.TaskService, logger *zap.Logger) *agent.Registry {
	return agent.NewRegistry(catalog, tasks, logger)
}

// ProvideOrchestrator creates the turn orchestrator
func ProvideOrchestrator(
	gateway ports.ReasoningGateway,
	registry *agent.Registry,
	catalog *agent.Catalog,
	conversations ports.ConversationRepository,
	logger *zap.Logger,
) *agent.Orchestrator {
	return agent.NewOrchestrator(gateway, registry, catalog, conversations, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(tasks *services.TaskService) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	registrations := []struct {
		command bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateTaskCommand{}, commandhandlers.NewCreateTaskHandler(tasks)},
		{commands.UpdateTaskCommand{}, commandhandlers.NewUpdateTaskHandler(tasks)},
		{commands.ToggleTaskCommand{}, commandhandlers.NewToggleTaskHandler(tasks)},
		{commands.DeleteTaskCommand{}, commandhandlers.NewDeleteTaskHandler(tasks)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.command, r.handler); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(tasks ports.TaskRepository, conversations ports.ConversationRepository) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetTaskQuery{}, queryhandlers.NewGetTaskHandler(tasks)},
		{queries.ListTasksQuery{}, queryhandlers.NewListTasksHandler(tasks)},
		{queries.ListConversationsQuery{}, queryhandlers.NewListConversationsHandler(conversations)},
		{queries.GetConversationMessagesQuery{}, queryhandlers.NewGetConversationMessagesHandler(conversations)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}
