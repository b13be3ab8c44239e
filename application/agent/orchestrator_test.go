package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/application/services"
	"taskflow-backend/domain/core/entities"
	"taskflow-backend/infrastructure/persistence/memory"
	pkgerrors "taskflow-backend/pkg/errors"
)

// stubGateway replays scripted completions or errors, one per call
type stubGateway struct {
	completions []*ports.Completion
	errs        []error
	calls       [][]ports.ChatMessage
}

func (g *stubGateway) Complete(ctx context.Context, messages []ports.ChatMessage, tools []ports.ToolDefinition) (*ports.Completion, error) {
	index := len(g.calls)
	g.calls = append(g.calls, messages)
	if index < len(g.errs) && g.errs[index] != nil {
		return nil, g.errs[index]
	}
	if index < len(g.completions) {
		return g.completions[index], nil
	}
	return &ports.Completion{Content: "done"}, nil
}

type orchestratorFixture struct {
	orchestrator  *Orchestrator
	gateway       *stubGateway
	tasks         *memory.TaskRepository
	conversations *memory.ConversationRepository
}

func newOrchestratorFixture(t *testing.T, gateway *stubGateway) *orchestratorFixture {
	t.Helper()
	logger := zap.NewNop()
	taskRepo := memory.NewTaskRepository()
	conversationRepo := memory.NewConversationRepository()
	taskService := services.NewTaskService(taskRepo, nil, logger)

	catalog, err := NewCatalog()
	require.NoError(t, err)
	registry := NewRegistry(catalog, taskService, logger)

	return &orchestratorFixture{
		orchestrator:  NewOrchestrator(gateway, registry, catalog, conversationRepo, logger),
		gateway:       gateway,
		tasks:         taskRepo,
		conversations: conversationRepo,
	}
}

func TestSubmitTurn_NoToolCalls(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{
		{Content: "Hello! How can I help with your tasks?"},
	}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Hi there"})
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help with your tasks?", result.Reply)
	assert.Empty(t, result.ToolCalls)
	assert.NotEmpty(t, result.ConversationID)

	// One round trip only
	require.Len(t, gateway.calls, 1)
	first := gateway.calls[0]
	require.Len(t, first, 2)
	assert.Equal(t, ports.ChatRoleSystem, first[0].Role)
	assert.Equal(t, ports.ChatRoleUser, first[1].Role)
	assert.Equal(t, "Hi there", first[1].Content)

	// No tool call records written for a tool-free turn
	conversation := findConversation(t, f.conversations, "user-1", result.ConversationID)
	records, err := f.conversations.GetToolCalls(ctx, "user-1", conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitTurn_FailedToolDoesNotStopSiblings(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{
		{ToolCalls: []ports.ToolCallRequest{
			{ID: "call-1", Name: ToolDeleteTask, Arguments: json.RawMessage(`{"task_id":"not-a-uuid"}`)},
			{ID: "call-2", Name: ToolCreateTask, Arguments: json.RawMessage(`{"title":"Still created"}`)},
		}},
		{Content: "One of those failed, but I created the task."},
	}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Delete something and add something"})
	require.NoError(t, err)

	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, ResultError, result.ToolCalls[0].Result.Status)
	assert.Equal(t, ResultOK, result.ToolCalls[1].Result.Status)

	tasks, err := f.tasks.ListByUser(ctx, "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSubmitTurn_PersistsUserThenAssistant(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{{Content: "Sure."}}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Hi"})
	require.NoError(t, err)

	conversation := findConversation(t, f.conversations, "user-1", result.ConversationID)
	history, err := f.conversations.GetHistory(ctx, "user-1", conversation.ID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entities.RoleUser, history[0].Role)
	assert.Equal(t, "Hi", history[0].Content)
	assert.Equal(t, entities.RoleAssistant, history[1].Role)
	assert.Equal(t, "Sure.", history[1].Content)
}

func TestSubmitTurn_CreateTaskFlow(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{
		{ToolCalls: []ports.ToolCallRequest{{
			ID:        "call-1",
			Name:      ToolCreateTask,
			Arguments: json.RawMessage(`{"title":"Buy milk"}`),
		}}},
		{Content: "I've added \"Buy milk\" to your list."},
	}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Remind me to buy milk"})
	require.NoError(t, err)

	assert.Equal(t, "I've added \"Buy milk\" to your list.", result.Reply)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, ToolCreateTask, result.ToolCalls[0].Name)
	assert.Equal(t, ResultOK, result.ToolCalls[0].Result.Status)

	// The task landed in storage, owned by the caller
	tasks, err := f.tasks.ListByUser(ctx, "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title().String())

	// Second round trip carries the tool result back
	require.Len(t, gateway.calls, 2)
	second := gateway.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, ports.ChatRoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Contains(t, last.Content, `"status":"ok"`)

	// Tool call record persisted after the messages
	conversation := findConversation(t, f.conversations, "user-1", result.ConversationID)
	records, err := f.conversations.GetToolCalls(ctx, "user-1", conversation.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ToolCreateTask, records[0].ToolName)
	assert.NotEmpty(t, records[0].Result)
}

func TestSubmitTurn_UnknownToolIsReportedNotFatal(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{
		{ToolCalls: []ports.ToolCallRequest{{
			ID:        "call-1",
			Name:      "summon_demon",
			Arguments: json.RawMessage(`{}`),
		}}},
		{Content: "I can't do that, but I can manage your tasks."},
	}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Do something weird"})
	require.NoError(t, err)

	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, ResultError, result.ToolCalls[0].Result.Status)
	assert.Contains(t, result.ToolCalls[0].Result.Error, "unknown tool")
	assert.Equal(t, "I can't do that, but I can manage your tasks.", result.Reply)
}

func TestSubmitTurn_RateLimitApology(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{errs: []error{pkgerrors.NewRateLimitError("slow down")}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, apologyRateLimit, result.Reply)
	assert.Empty(t, result.ToolCalls)

	// The exchange is still on record
	conversation := findConversation(t, f.conversations, "user-1", result.ConversationID)
	history, err := f.conversations.GetHistory(ctx, "user-1", conversation.ID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, apologyRateLimit, history[1].Content)

	// No task was touched on the way to the apology
	tasks, err := f.tasks.ListByUser(ctx, "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSubmitTurn_ConfigurationApology(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{errs: []error{pkgerrors.NewConfigurationError("no key")}}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, apologyConfiguration, result.Reply)
}

func TestSubmitTurn_SecondCallFailureKeepsToolTrace(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{
		completions: []*ports.Completion{
			{ToolCalls: []ports.ToolCallRequest{{
				ID:        "call-1",
				Name:      ToolCreateTask,
				Arguments: json.RawMessage(`{"title":"Buy milk"}`),
			}}},
		},
		errs: []error{nil, pkgerrors.NewExternalError("reasoning", assert.AnError)},
	}
	f := newOrchestratorFixture(t, gateway)

	result, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Remind me to buy milk"})
	require.NoError(t, err)
	assert.Equal(t, apologyGeneric, result.Reply)

	// The tool already ran and its trace survives the failed second round
	tasks, err := f.tasks.ListByUser(ctx, "user-1", ports.TaskFilter{Status: ports.StatusAll})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	conversation := findConversation(t, f.conversations, "user-1", result.ConversationID)
	records, err := f.conversations.GetToolCalls(ctx, "user-1", conversation.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSubmitTurn_ForeignConversationRejected(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{{Content: "Hi"}}}
	f := newOrchestratorFixture(t, gateway)

	first, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "Hi"})
	require.NoError(t, err)

	_, err = f.orchestrator.SubmitTurn(ctx, "user-2", TurnInput{
		ConversationID: first.ConversationID,
		Message:        "Let me in",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSubmitTurn_InvalidConversationID(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture(t, &stubGateway{})

	_, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{
		ConversationID: "not-a-uuid",
		Message:        "Hi",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSubmitTurn_EmptyMessageRejected(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture(t, &stubGateway{})

	_, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: ""})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSubmitTurn_HistoryCarriedIntoContext(t *testing.T) {
	ctx := context.Background()
	gateway := &stubGateway{completions: []*ports.Completion{
		{Content: "Nice to meet you, Ada."},
		{Content: "Your name is Ada."},
	}}
	f := newOrchestratorFixture(t, gateway)

	first, err := f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{Message: "My name is Ada"})
	require.NoError(t, err)

	_, err = f.orchestrator.SubmitTurn(ctx, "user-1", TurnInput{
		ConversationID: first.ConversationID,
		Message:        "What is my name?",
	})
	require.NoError(t, err)

	require.Len(t, gateway.calls, 2)
	second := gateway.calls[1]
	// system + two stored messages + new question
	require.Len(t, second, 4)
	assert.Equal(t, "My name is Ada", second[1].Content)
	assert.Equal(t, "Nice to meet you, Ada.", second[2].Content)
	assert.Equal(t, "What is my name?", second[3].Content)
}

func findConversation(t *testing.T, repo *memory.ConversationRepository, userID, id string) *entities.Conversation {
	t.Helper()
	conversations, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	for _, conversation := range conversations {
		if conversation.ID.String() == id {
			return conversation
		}
	}
	t.Fatalf("conversation %s not found for %s", id, userID)
	return nil
}
