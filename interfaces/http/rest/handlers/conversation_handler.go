package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"taskflow-backend/application/queries"
	querybus "taskflow-backend/application/queries/bus"
	"taskflow-backend/pkg/auth"
	"taskflow-backend/pkg/common"
	pkgerrors "taskflow-backend/pkg/errors"
)

// ConversationHandler serves the conversation read endpoints
type ConversationHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{queryBus: queryBus, errors: errors, logger: logger}
}

// ListConversations handles GET /conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListConversationsQuery{UserID: user.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetMessages handles GET /conversations/{conversationID}/messages
func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	query := queries.GetConversationMessagesQuery{
		UserID:         user.UserID,
		ConversationID: chi.URLParam(r, "conversationID"),
		Limit:          limit,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
