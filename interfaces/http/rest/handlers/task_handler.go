package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow-backend/application/commands"
	"taskflow-backend/application/commands/bus"
	"taskflow-backend/application/queries"
	querybus "taskflow-backend/application/queries/bus"
	"taskflow-backend/pkg/auth"
	"taskflow-backend/pkg/common"
	pkgerrors "taskflow-backend/pkg/errors"
	"taskflow-backend/pkg/utils"
)

const maxTaskBodyBytes = 16 << 10

// TaskHandler serves the task CRUD endpoints
type TaskHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=1000"`
	Priority    *int    `json:"priority" validate:"omitempty,gte=1,lte=5"`
	DueDate     *string `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
	Priority    *int    `json:"priority" validate:"omitempty,gte=1,lte=5"`
	DueDate     *string `json:"due_date"`
}

type toggleTaskRequest struct {
	Completed bool `json:"completed"`
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	var req createTaskRequest
	if err := common.ParseJSONBody(r, &req, maxTaskBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	// The ID is generated here so the command result can be read back
	taskID := uuid.New().String()
	cmd := commands.CreateTaskCommand{
		TaskID:      taskID,
		UserID:      user.UserID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     dueDate,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondWithTask(w, r, user.UserID, taskID, http.StatusCreated)
}

// GetTask handles GET /tasks/{taskID}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	h.respondWithTask(w, r, user.UserID, chi.URLParam(r, "taskID"), http.StatusOK)
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	query := queries.ListTasksQuery{
		UserID: user.UserID,
		Status: r.URL.Query().Get("status"),
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateTask handles PUT /tasks/{taskID}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	var req updateTaskRequest
	if err := common.ParseJSONBody(r, &req, maxTaskBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	taskID := chi.URLParam(r, "taskID")
	cmd := commands.UpdateTaskCommand{
		UserID:      user.UserID,
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     dueDate,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondWithTask(w, r, user.UserID, taskID, http.StatusOK)
}

// ToggleTask handles PATCH /tasks/{taskID}/toggle
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	var req toggleTaskRequest
	if err := common.ParseJSONBody(r, &req, maxTaskBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}

	taskID := chi.URLParam(r, "taskID")
	cmd := commands.ToggleTaskCommand{
		UserID:    user.UserID,
		TaskID:    taskID,
		Completed: req.Completed,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondWithTask(w, r, user.UserID, taskID, http.StatusOK)
}

// DeleteTask handles DELETE /tasks/{taskID}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return
	}

	cmd := commands.DeleteTaskCommand{
		UserID: user.UserID,
		TaskID: chi.URLParam(r, "taskID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *TaskHandler) respondWithTask(w http.ResponseWriter, r *http.Request, userID, taskID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetTaskQuery{UserID: userID, TaskID: taskID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := utils.ParseFlexibleTime(*raw)
	if err != nil {
		return nil, pkgerrors.NewValidationError("due_date is not a recognized date")
	}
	return &parsed, nil
}
