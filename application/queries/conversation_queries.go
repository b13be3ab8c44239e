package queries

import (
	"time"

	"taskflow-backend/domain/core/entities"
	pkgerrors "taskflow-backend/pkg/errors"
)

// ListConversationsQuery retrieves all conversations of the acting user
type ListConversationsQuery struct {
	UserID string
}

// Validate checks query invariants before dispatch
func (q ListConversationsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	return nil
}

// GetConversationMessagesQuery retrieves a conversation's messages, oldest first
type GetConversationMessagesQuery struct {
	UserID         string
	ConversationID string
	Limit          int
}

// Validate checks query invariants before dispatch
func (q GetConversationMessagesQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.ConversationID == "" {
		return pkgerrors.NewValidationError("conversation ID is required")
	}
	if q.Limit < 0 {
		return pkgerrors.NewValidationError("limit must be non-negative")
	}
	return nil
}

// ConversationView is the read model for a conversation
type ConversationView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageView is the read model for a conversation message
type MessageView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewConversationView maps a conversation entity into its read model
func NewConversationView(conversation *entities.Conversation) ConversationView {
	return ConversationView{
		ID:        conversation.ID.String(),
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}

// NewMessageView maps a message entity into its read model
func NewMessageView(message *entities.Message) MessageView {
	return MessageView{
		ID:        message.ID,
		Role:      string(message.Role),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}
