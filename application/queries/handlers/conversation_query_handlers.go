package handlers

import (
	"context"
	"fmt"

	"taskflow-backend/application/ports"
	"taskflow-backend/application/queries"
	"taskflow-backend/application/queries/bus"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

const defaultHistoryLimit = 50

// ListConversationsHandler handles ListConversationsQuery
type ListConversationsHandler struct {
	conversations ports.ConversationRepository
}

// NewListConversationsHandler creates a new handler
func NewListConversationsHandler(conversations ports.ConversationRepository) *ListConversationsHandler {
	return &ListConversationsHandler{conversations: conversations}
}

// Handle implements bus.QueryHandler
func (h *ListConversationsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ListConversationsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	conversations, err := h.conversations.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]queries.ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		views = append(views, queries.NewConversationView(conversation))
	}
	return views, nil
}

// GetConversationMessagesHandler handles GetConversationMessagesQuery
type GetConversationMessagesHandler struct {
	conversations ports.ConversationRepository
}

// NewGetConversationMessagesHandler creates a new handler
func NewGetConversationMessagesHandler(conversations ports.ConversationRepository) *GetConversationMessagesHandler {
	return &GetConversationMessagesHandler{conversations: conversations}
}

// Handle implements bus.QueryHandler
func (h *GetConversationMessagesHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetConversationMessagesQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	conversationID, err := valueobjects.NewConversationIDFromString(q.ConversationID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	messages, err := h.conversations.GetHistory(ctx, q.UserID, conversationID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]queries.MessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, queries.NewMessageView(message))
	}
	return views, nil
}
