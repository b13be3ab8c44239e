package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/application/queries"
	"taskflow-backend/application/services"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
	"taskflow-backend/pkg/utils"
)

// Result statuses reported back to the reasoning service
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ToolResult is the structured outcome of one tool execution. Failures are
// carried as data, never as Go errors: the reasoning service reads the
// error field and explains the problem to the user in its second round.
type ToolResult struct {
	Tool   string          `json:"tool"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// IsError reports whether the execution failed
func (r ToolResult) IsError() bool {
	return r.Status == ResultError
}

// JSON renders the result for the tool message and the persisted record
func (r ToolResult) JSON() json.RawMessage {
	raw, err := json.Marshal(r)
	if err != nil {
		return json.RawMessage(`{"status":"error","error":"result serialization failed"}`)
	}
	return raw
}

// Registry executes tool calls requested by the reasoning service against
// the task service. Every execution is scoped to the authenticated user
// passed by the orchestrator; the reasoning service has no way to name or
// override that identity.
type Registry struct {
	catalog *Catalog
	tasks   *services.TaskService
	logger  *zap.Logger
}

// NewRegistry creates a tool registry backed by the task service
func NewRegistry(catalog *Catalog, tasks *services.TaskService, logger *zap.Logger) *Registry {
	return &Registry{
		catalog: catalog,
		tasks:   tasks,
		logger:  logger,
	}
}

// Dispatch executes one requested tool call and always returns a structured
// result. Unknown tools, malformed arguments and execution failures all
// surface as error results so a single bad call never aborts the turn.
func (r *Registry) Dispatch(ctx context.Context, userID string, call ports.ToolCallRequest) ToolResult {
	if !r.catalog.Has(call.Name) {
		return errorResult(call.Name, fmt.Sprintf("unknown tool %q", call.Name))
	}
	if err := r.catalog.ValidateArguments(call.Name, call.Arguments); err != nil {
		return errorResult(call.Name, fmt.Sprintf("invalid arguments: %v", err))
	}

	var (
		data interface{}
		err  error
	)
	switch call.Name {
	case ToolCreateTask:
		data, err = r.createTask(ctx, userID, call.Arguments)
	case ToolListTasks:
		data, err = r.listTasks(ctx, userID, call.Arguments)
	case ToolUpdateTask:
		data, err = r.updateTask(ctx, userID, call.Arguments)
	case ToolDeleteTask:
		data, err = r.deleteTask(ctx, userID, call.Arguments)
	}
	if err != nil {
		return r.mapError(call.Name, err)
	}

	raw, marshalErr := json.Marshal(data)
	if marshalErr != nil {
		r.logger.Error("tool result serialization failed",
			zap.String("tool", call.Name),
			zap.Error(marshalErr),
		)
		return errorResult(call.Name, "internal error while formatting the result")
	}
	return ToolResult{Tool: call.Name, Status: ResultOK, Data: raw}
}

type createTaskArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
	DueDate     string `json:"due_date"`
}

func (r *Registry) createTask(ctx context.Context, userID string, arguments json.RawMessage) (interface{}, error) {
	var args createTaskArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid arguments: %v", err))
	}

	input := services.CreateTaskInput{
		Title:       args.Title,
		Description: args.Description,
		Priority:    args.Priority,
	}
	if args.DueDate != "" {
		due, err := utils.ParseFlexibleTime(args.DueDate)
		if err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("due_date %q is not a recognized date", args.DueDate))
		}
		input.DueDate = &due
	}

	task, err := r.tasks.Create(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	return queries.NewTaskView(task), nil
}

type listTasksArgs struct {
	Status string `json:"status"`
}

func (r *Registry) listTasks(ctx context.Context, userID string, arguments json.RawMessage) (interface{}, error) {
	var args listTasksArgs
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	filter := ports.TaskFilter{Status: ports.StatusFilter(args.Status)}
	tasks, err := r.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]queries.TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, queries.NewTaskView(task))
	}
	return queries.TaskListView{Tasks: views, Total: len(views)}, nil
}

type updateTaskArgs struct {
	TaskID      string  `json:"task_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func (r *Registry) updateTask(ctx context.Context, userID string, arguments json.RawMessage) (interface{}, error) {
	var args updateTaskArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid arguments: %v", err))
	}

	taskID, err := valueobjects.NewTaskIDFromString(args.TaskID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("task_id %q is not a valid task ID", args.TaskID))
	}

	input := services.UpdateTaskInput{
		Title:       args.Title,
		Description: args.Description,
		Completed:   args.Completed,
		Priority:    args.Priority,
	}
	if args.DueDate != nil {
		due, err := utils.ParseFlexibleTime(*args.DueDate)
		if err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("due_date %q is not a recognized date", *args.DueDate))
		}
		input.DueDate = &due
	}
	if input.Title == nil && input.Description == nil && input.Completed == nil &&
		input.Priority == nil && input.DueDate == nil {
		return nil, pkgerrors.NewValidationError("at least one field besides task_id must be provided")
	}

	task, err := r.tasks.Update(ctx, userID, taskID, input)
	if err != nil {
		return nil, err
	}
	return queries.NewTaskView(task), nil
}

type deleteTaskArgs struct {
	TaskID string `json:"task_id"`
}

func (r *Registry) deleteTask(ctx context.Context, userID string, arguments json.RawMessage) (interface{}, error) {
	var args deleteTaskArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid arguments: %v", err))
	}

	taskID, err := valueobjects.NewTaskIDFromString(args.TaskID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("task_id %q is not a valid task ID", args.TaskID))
	}

	if err := r.tasks.Delete(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": true, "task_id": args.TaskID}, nil
}

// mapError converts an execution error into a result the reasoning service
// can relay. Cross-user IDs were already collapsed into NotFound by the
// repository, so "task not found" is all the other user ever learns.
func (r *Registry) mapError(tool string, err error) ToolResult {
	switch {
	case pkgerrors.IsNotFound(err):
		return errorResult(tool, "task not found")
	case pkgerrors.IsValidation(err):
		if appErr := pkgerrors.GetAppError(err); appErr != nil {
			return errorResult(tool, appErr.Message)
		}
		return errorResult(tool, err.Error())
	default:
		r.logger.Error("tool execution failed",
			zap.String("tool", tool),
			zap.Error(err),
		)
		return errorResult(tool, "the operation failed unexpectedly")
	}
}

func errorResult(tool, message string) ToolResult {
	return ToolResult{Tool: tool, Status: ResultError, Error: message}
}
