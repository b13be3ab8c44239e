package agent

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/domain/config"
	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// turnState labels the phases of a conversational turn for logging
type turnState string

const (
	stateLoadingContext turnState = "loading_context"
	stateFirstReasoning turnState = "first_reasoning_call"
	stateDispatching    turnState = "dispatching_tools"
	stateSecondReason   turnState = "second_reasoning_call"
	statePersisting     turnState = "persisting"
	stateDone           turnState = "done"
	stateFailed         turnState = "failed"
)

// Canned replies for reasoning-service failures. Gateway failures never
// surface as transport errors to the caller: the turn completes with one
// of these as the assistant reply.
const (
	apologyConfiguration = "I'm sorry, but the assistant isn't configured correctly right now. Please contact support."
	apologyRateLimit     = "I'm receiving too many requests right now. Please wait a moment and try again."
	apologyGeneric       = "I'm sorry, I ran into a problem while processing your request. Please try again."
)

const conversationTitleLimit = 60

// TurnInput is one user utterance submitted to the orchestrator. An empty
// ConversationID starts a new conversation.
type TurnInput struct {
	ConversationID string
	Message        string
}

// ToolInvocation records one dispatched tool call within a turn
type ToolInvocation struct {
	Name      string     `json:"name"`
	Arguments []byte     `json:"arguments"`
	Result    ToolResult `json:"result"`
}

// TurnResult is the completed outcome of a turn
type TurnResult struct {
	ConversationID string           `json:"conversation_id"`
	Reply          string           `json:"reply"`
	ToolCalls      []ToolInvocation `json:"tool_calls,omitempty"`
}

// Orchestrator drives a full conversational turn: load context, call the
// reasoning service, dispatch any requested tools sequentially, call the
// service again with the results, then persist the trace.
type Orchestrator struct {
	gateway       ports.ReasoningGateway
	registry      *Registry
	catalog       *Catalog
	conversations ports.ConversationRepository
	logger        *zap.Logger
}

// NewOrchestrator creates a turn orchestrator
func NewOrchestrator(
	gateway ports.ReasoningGateway,
	registry *Registry,
	catalog *Catalog,
	conversations ports.ConversationRepository,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		gateway:       gateway,
		registry:      registry,
		catalog:       catalog,
		conversations: conversations,
		logger:        logger,
	}
}

// SubmitTurn processes one user message and returns the assistant's reply.
// Input problems (bad conversation ID, foreign conversation, invalid
// message) return errors; reasoning-service failures degrade into apology
// replies; persistence failures are logged and never fail the turn.
func (o *Orchestrator) SubmitTurn(ctx context.Context, userID string, input TurnInput) (*TurnResult, error) {
	o.logState(stateLoadingContext, input.ConversationID)

	conversation, err := o.resolveConversation(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	// Validates role and message length before anything is sent upstream
	userMessage, err := entities.NewMessage(conversation.ID, userID, entities.RoleUser, input.Message)
	if err != nil {
		return nil, err
	}

	messages := o.buildContext(ctx, userID, conversation, input.Message)

	o.logState(stateFirstReasoning, conversation.ID.String())
	completion, err := o.gateway.Complete(ctx, messages, o.catalog.Definitions())
	if err != nil {
		return o.failTurn(ctx, userID, conversation, userMessage, nil, err)
	}

	var invocations []ToolInvocation
	if len(completion.ToolCalls) > 0 {
		o.logState(stateDispatching, conversation.ID.String())

		assistantRequest := ports.ChatMessage{
			Role:      ports.ChatRoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		}
		messages = append(messages, assistantRequest)

		// Sequential dispatch in the order requested; a failed tool is
		// reported back as data and does not stop the remaining calls.
		for _, call := range completion.ToolCalls {
			result := o.registry.Dispatch(ctx, userID, call)
			invocations = append(invocations, ToolInvocation{
				Name:      call.Name,
				Arguments: call.Arguments,
				Result:    result,
			})
			messages = append(messages, ports.ChatMessage{
				Role:       ports.ChatRoleTool,
				Content:    string(result.JSON()),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}

		o.logState(stateSecondReason, conversation.ID.String())
		completion, err = o.gateway.Complete(ctx, messages, o.catalog.Definitions())
		if err != nil {
			return o.failTurn(ctx, userID, conversation, userMessage, invocations, err)
		}
	}

	reply := completion.Content
	if reply == "" {
		reply = apologyGeneric
	}

	o.logState(statePersisting, conversation.ID.String())
	o.persistTurn(ctx, userID, conversation, userMessage, reply, invocations)

	o.logState(stateDone, conversation.ID.String())
	return &TurnResult{
		ConversationID: conversation.ID.String(),
		Reply:          reply,
		ToolCalls:      invocations,
	}, nil
}

// resolveConversation loads an existing conversation with ownership checks,
// or starts a fresh one titled after the opening message.
func (o *Orchestrator) resolveConversation(ctx context.Context, userID string, input TurnInput) (*entities.Conversation, error) {
	if input.ConversationID == "" {
		conversation, err := entities.NewConversation(userID, titleFromMessage(input.Message))
		if err != nil {
			return nil, err
		}
		if err := o.conversations.CreateConversation(ctx, conversation); err != nil {
			return nil, err
		}
		return conversation, nil
	}

	conversationID, err := valueobjects.NewConversationIDFromString(input.ConversationID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("conversation ID is not valid")
	}
	return o.conversations.GetConversation(ctx, userID, conversationID)
}

// buildContext assembles the message list for the first reasoning call:
// system prompt, then stored history oldest first, then the new message.
// A history read failure degrades to an empty window rather than failing
// the turn.
func (o *Orchestrator) buildContext(ctx context.Context, userID string, conversation *entities.Conversation, message string) []ports.ChatMessage {
	window := config.DefaultDomainConfig().HistoryWindow
	history, err := o.conversations.GetHistory(ctx, userID, conversation.ID, window)
	if err != nil {
		o.logger.Warn("failed to load conversation history",
			zap.String("conversationId", conversation.ID.String()),
			zap.Error(err),
		)
		history = nil
	}

	messages := make([]ports.ChatMessage, 0, len(history)+2)
	messages = append(messages, ports.ChatMessage{Role: ports.ChatRoleSystem, Content: SystemPrompt})
	for _, stored := range history {
		role := ports.ChatRoleUser
		if stored.Role == entities.RoleAssistant {
			role = ports.ChatRoleAssistant
		}
		messages = append(messages, ports.ChatMessage{Role: role, Content: stored.Content})
	}
	messages = append(messages, ports.ChatMessage{Role: ports.ChatRoleUser, Content: message})
	return messages
}

// failTurn converts a reasoning-service failure into an apology reply.
// Whatever already happened in the turn (the user message, any dispatched
// tool calls) is still persisted.
func (o *Orchestrator) failTurn(
	ctx context.Context,
	userID string,
	conversation *entities.Conversation,
	userMessage *entities.Message,
	invocations []ToolInvocation,
	cause error,
) (*TurnResult, error) {
	o.logState(stateFailed, conversation.ID.String())

	reply := apologyGeneric
	switch {
	case pkgerrors.IsConfiguration(cause):
		reply = apologyConfiguration
		o.logger.Error("reasoning service unusable: configuration problem", zap.Error(cause))
	case pkgerrors.IsRateLimit(cause):
		reply = apologyRateLimit
		o.logger.Warn("reasoning service rate limited", zap.Error(cause))
	default:
		o.logger.Error("reasoning service call failed", zap.Error(cause))
	}

	o.persistTurn(ctx, userID, conversation, userMessage, reply, invocations)
	return &TurnResult{
		ConversationID: conversation.ID.String(),
		Reply:          reply,
		ToolCalls:      invocations,
	}, nil
}

// persistTurn writes the turn trace in fixed order: user message, assistant
// reply, then tool call records in dispatch order. Each write is best-effort.
func (o *Orchestrator) persistTurn(
	ctx context.Context,
	userID string,
	conversation *entities.Conversation,
	userMessage *entities.Message,
	reply string,
	invocations []ToolInvocation,
) {
	if err := o.conversations.AppendMessage(ctx, userMessage); err != nil {
		o.logger.Error("failed to persist user message",
			zap.String("conversationId", conversation.ID.String()),
			zap.Error(err),
		)
	}

	assistantMessage, err := entities.NewMessage(conversation.ID, userID, entities.RoleAssistant, reply)
	if err != nil {
		o.logger.Error("failed to build assistant message", zap.Error(err))
	} else if err := o.conversations.AppendMessage(ctx, assistantMessage); err != nil {
		o.logger.Error("failed to persist assistant message",
			zap.String("conversationId", conversation.ID.String()),
			zap.Error(err),
		)
	}

	for _, invocation := range invocations {
		record, err := entities.NewToolCallRecord(conversation.ID, invocation.Name, invocation.Arguments, invocation.Result.JSON())
		if err != nil {
			o.logger.Error("failed to build tool call record",
				zap.String("tool", invocation.Name),
				zap.Error(err),
			)
			continue
		}
		if err := o.conversations.AppendToolCall(ctx, userID, record); err != nil {
			o.logger.Error("failed to persist tool call record",
				zap.String("tool", invocation.Name),
				zap.Error(err),
			)
		}
	}
}

func (o *Orchestrator) logState(state turnState, conversationID string) {
	o.logger.Debug("turn state",
		zap.String("state", string(state)),
		zap.String("conversationId", conversationID),
	)
}

func titleFromMessage(message string) string {
	if utf8.RuneCountInString(message) <= conversationTitleLimit {
		return message
	}
	runes := []rune(message)
	return string(runes[:conversationTitleLimit])
}
