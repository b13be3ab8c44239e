package memory

import (
	"context"
	"sort"
	"sync"

	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// ConversationRepository implements ports.ConversationRepository in memory
type ConversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*entities.Conversation
	messages      map[string][]*entities.Message
	toolCalls     map[string][]*entities.ToolCallRecord
}

// NewConversationRepository creates an empty in-memory conversation repository
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		conversations: make(map[string]*entities.Conversation),
		messages:      make(map[string][]*entities.Message),
		toolCalls:     make(map[string][]*entities.ToolCallRecord),
	}
}

// CreateConversation persists a new conversation
func (r *ConversationRepository) CreateConversation(ctx context.Context, conversation *entities.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := conversation.ID.String()
	if _, ok := r.conversations[key]; ok {
		return pkgerrors.NewConflictError("conversation already exists")
	}
	r.conversations[key] = conversation
	return nil
}

// GetConversation retrieves a conversation owned by userID
func (r *ConversationRepository) GetConversation(ctx context.Context, userID string, id valueobjects.ConversationID) (*entities.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getOwned(userID, id)
}

// getOwned must be called with the lock held
func (r *ConversationRepository) getOwned(userID string, id valueobjects.ConversationID) (*entities.Conversation, error) {
	conversation, ok := r.conversations[id.String()]
	if !ok || conversation.UserID != userID {
		return nil, pkgerrors.NewNotFoundError("conversation")
	}
	return conversation, nil
}

// ListByUser retrieves all conversations owned by userID, most recent first
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conversations []*entities.Conversation
	for _, conversation := range r.conversations {
		if conversation.UserID == userID {
			conversations = append(conversations, conversation)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

// AppendMessage appends a message to a conversation the author owns
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *entities.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, err := r.getOwned(message.UserID, message.ConversationID)
	if err != nil {
		return err
	}

	key := message.ConversationID.String()
	r.messages[key] = append(r.messages[key], message)
	conversation.UpdatedAt = message.CreatedAt
	return nil
}

// AppendToolCall appends a tool call record to a conversation the user owns
func (r *ConversationRepository) AppendToolCall(ctx context.Context, userID string, record *entities.ToolCallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getOwned(userID, record.ConversationID); err != nil {
		return err
	}

	key := record.ConversationID.String()
	r.toolCalls[key] = append(r.toolCalls[key], record)
	return nil
}

// GetHistory retrieves up to limit messages, oldest first. When more than
// limit messages exist, the oldest overflow is dropped so the window always
// holds the most recent exchange.
func (r *ConversationRepository) GetHistory(ctx context.Context, userID string, id valueobjects.ConversationID, limit int) ([]*entities.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.getOwned(userID, id); err != nil {
		return nil, err
	}

	stored := r.messages[id.String()]
	if limit > 0 && len(stored) > limit {
		stored = stored[len(stored)-limit:]
	}

	messages := make([]*entities.Message, len(stored))
	copy(messages, stored)
	return messages, nil
}

// GetToolCalls retrieves tool call records in creation order
func (r *ConversationRepository) GetToolCalls(ctx context.Context, userID string, id valueobjects.ConversationID) ([]*entities.ToolCallRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.getOwned(userID, id); err != nil {
		return nil, err
	}

	stored := r.toolCalls[id.String()]
	records := make([]*entities.ToolCallRecord, len(stored))
	copy(records, stored)
	return records, nil
}
