package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"taskflow-backend/application/agent"
	"taskflow-backend/pkg/auth"
	"taskflow-backend/pkg/common"
	pkgerrors "taskflow-backend/pkg/errors"
	"taskflow-backend/pkg/utils"
)

const maxChatBodyBytes = 32 << 10

// ChatHandler serves the conversational endpoint
type ChatHandler struct {
	orchestrator *agent.Orchestrator
	errors       *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(orchestrator *agent.Orchestrator, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, errors: errors, logger: logger}
}

type chatRequest struct {
	Message        string `json:"message" validate:"required,max=5000"`
	ConversationID string `json:"conversation_id" validate:"omitempty,uuid"`
}

type chatToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
}

type chatResponse struct {
	ConversationID string         `json:"conversation_id"`
	Reply          string         `json:"reply"`
	ToolCalls      []chatToolCall `json:"tool_calls,omitempty"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	var req chatRequest
	if err := common.ParseJSONBody(r, &req, maxChatBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.orchestrator.SubmitTurn(r.Context(), user.UserID, agent.TurnInput{
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	response := chatResponse{
		ConversationID: result.ConversationID,
		Reply:          result.Reply,
	}
	for _, invocation := range result.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, chatToolCall{
			Name:      invocation.Name,
			Arguments: json.RawMessage(invocation.Arguments),
			Status:    invocation.Result.Status,
			Error:     invocation.Result.Error,
		})
	}
	common.RespondJSON(w, http.StatusOK, response)
}
