package ports

import (
	"context"

	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	"taskflow-backend/domain/events"
)

// StatusFilter narrows task listings by completion state
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPending   StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
)

// Valid reports whether the filter is a recognized value
func (f StatusFilter) Valid() bool {
	return f == StatusAll || f == StatusPending || f == StatusCompleted
}

// TaskFilter defines task listing parameters
type TaskFilter struct {
	Status StatusFilter
	Limit  int
	Offset int
}

// TaskRepository defines the interface for task persistence.
// Every read and write is scoped by the owning user's identity: an ID that
// exists but belongs to another user behaves exactly like a missing ID.
type TaskRepository interface {
	// Save persists a task (create or update)
	Save(ctx context.Context, task *entities.Task) error

	// GetByID retrieves a task owned by userID, or a NotFound error
	GetByID(ctx context.Context, userID string, id valueobjects.TaskID) (*entities.Task, error)

	// ListByUser retrieves tasks owned by userID matching the filter
	ListByUser(ctx context.Context, userID string, filter TaskFilter) ([]*entities.Task, error)

	// Delete removes a task owned by userID, or returns a NotFound error
	Delete(ctx context.Context, userID string, id valueobjects.TaskID) error
}

// UserRepository defines the interface for account persistence
type UserRepository interface {
	// Create persists a new user; fails with a Conflict error on duplicate email
	Create(ctx context.Context, user *entities.User) error

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// ConversationRepository defines the interface for conversation persistence.
// All operations referencing an existing conversation are additionally
// filtered by the requesting user; cross-user access yields NotFound.
type ConversationRepository interface {
	// CreateConversation persists a new conversation
	CreateConversation(ctx context.Context, conversation *entities.Conversation) error

	// GetConversation retrieves a conversation owned by userID
	GetConversation(ctx context.Context, userID string, id valueobjects.ConversationID) (*entities.Conversation, error)

	// ListByUser retrieves all conversations owned by userID
	ListByUser(ctx context.Context, userID string) ([]*entities.Conversation, error)

	// AppendMessage appends an immutable message to a conversation the user owns
	AppendMessage(ctx context.Context, message *entities.Message) error

	// AppendToolCall appends a tool call record to a conversation the user owns
	AppendToolCall(ctx context.Context, userID string, record *entities.ToolCallRecord) error

	// GetHistory retrieves up to limit messages, oldest first
	GetHistory(ctx context.Context, userID string, id valueobjects.ConversationID, limit int) ([]*entities.Message, error)

	// GetToolCalls retrieves tool call records in creation order
	GetToolCalls(ctx context.Context, userID string, id valueobjects.ConversationID) ([]*entities.ToolCallRecord, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// EventBus defines the interface for in-process event distribution
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error
}
