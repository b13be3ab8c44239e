package entities

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskflow-backend/domain/config"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// MessageRole is the author of a conversation message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two allowed values
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Conversation is a chat thread owned by a single user
type Conversation struct {
	ID        valueobjects.ConversationID `json:"id"`
	UserID    string                      `json:"user_id"`
	Title     string                      `json:"title,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// NewConversation creates a conversation for a user
func NewConversation(userID, title string) (*Conversation, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	now := time.Now()
	return &Conversation{
		ID:        valueobjects.NewConversationID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Message is a single utterance within a conversation. Messages are
// immutable once created and replayed oldest first.
type Message struct {
	ID             string                      `json:"id"`
	ConversationID valueobjects.ConversationID `json:"conversation_id"`
	UserID         string                      `json:"user_id"`
	Role           MessageRole                 `json:"role"`
	Content        string                      `json:"content"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// NewMessage creates a message with role and content validation
func NewMessage(conversationID valueobjects.ConversationID, userID string, role MessageRole, content string) (*Message, error) {
	if conversationID.IsZero() {
		return nil, pkgerrors.NewValidationError("conversationID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if !role.Valid() {
		return nil, pkgerrors.NewValidationError("role must be 'user' or 'assistant'")
	}

	cfg := config.DefaultDomainConfig()
	length := utf8.RuneCountInString(content)
	if length < cfg.MinMessageLength {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	if length > cfg.MaxMessageLength {
		return nil, pkgerrors.NewValidationError("content exceeds maximum length")
	}

	return &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}, nil
}

// ToolCallRecord is the persisted trace of one tool invocation requested
// during a turn. The result stays null until execution completes; records
// are only written after execution, success or failure.
type ToolCallRecord struct {
	ID             string                      `json:"id"`
	ConversationID valueobjects.ConversationID `json:"conversation_id"`
	ToolName       string                      `json:"tool_name"`
	Arguments      json.RawMessage             `json:"arguments"`
	Result         json.RawMessage             `json:"result,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// NewToolCallRecord creates a tool call record for persistence
func NewToolCallRecord(conversationID valueobjects.ConversationID, toolName string, arguments, result json.RawMessage) (*ToolCallRecord, error) {
	if conversationID.IsZero() {
		return nil, pkgerrors.NewValidationError("conversationID cannot be empty")
	}
	if toolName == "" {
		return nil, pkgerrors.NewValidationError("tool name cannot be empty")
	}
	if len(toolName) > config.DefaultDomainConfig().MaxToolNameLen {
		return nil, pkgerrors.NewValidationError("tool name exceeds maximum length")
	}

	return &ToolCallRecord{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		ToolName:       toolName,
		Arguments:      arguments,
		Result:         result,
		CreatedAt:      time.Now(),
	}, nil
}
