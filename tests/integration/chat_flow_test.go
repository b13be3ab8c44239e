package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-backend/application/agent"
	"taskflow-backend/application/ports"
	"taskflow-backend/application/queries"
	queryhandlers "taskflow-backend/application/queries/handlers"
	"taskflow-backend/application/services"
	"taskflow-backend/infrastructure/persistence/memory"
	"taskflow-backend/pkg/auth"
)

// scriptedGateway returns canned completions in order
type scriptedGateway struct {
	completions []*ports.Completion
	calls       int
}

func (g *scriptedGateway) Complete(ctx context.Context, messages []ports.ChatMessage, tools []ports.ToolDefinition) (*ports.Completion, error) {
	index := g.calls
	g.calls++
	if index < len(g.completions) {
		return g.completions[index], nil
	}
	return &ports.Completion{Content: "done"}, nil
}

type stack struct {
	auth          *services.AuthService
	tasks         *services.TaskService
	orchestrator  *agent.Orchestrator
	conversations *memory.ConversationRepository
	taskRepo      *memory.TaskRepository
}

func newStack(t *testing.T, gateway ports.ReasoningGateway) *stack {
	t.Helper()
	logger := zap.NewNop()

	userRepo := memory.NewUserRepository()
	taskRepo := memory.NewTaskRepository()
	conversationRepo := memory.NewConversationRepository()

	tokens, err := auth.NewJWTManager(auth.JWTConfig{
		SecretKey: "integration-test-secret",
		Issuer:    "taskflow-test",
		TokenTTL:  time.Hour,
	})
	require.NoError(t, err)

	taskService := services.NewTaskService(taskRepo, nil, logger)
	catalog, err := agent.NewCatalog()
	require.NoError(t, err)
	registry := agent.NewRegistry(catalog, taskService, logger)

	return &stack{
		auth:          services.NewAuthService(userRepo, tokens, logger),
		tasks:         taskService,
		orchestrator:  agent.NewOrchestrator(gateway, registry, catalog, conversationRepo, logger),
		conversations: conversationRepo,
		taskRepo:      taskRepo,
	}
}

// TestChatFlow walks a full user journey: sign up, ask the assistant to
// create a task, then see the task through the regular list query.
func TestChatFlow(t *testing.T) {
	ctx := context.Background()
	gateway := &scriptedGateway{completions: []*ports.Completion{
		{ToolCalls: []ports.ToolCallRequest{{
			ID:        "call-1",
			Name:      agent.ToolCreateTask,
			Arguments: json.RawMessage(`{"title":"Buy milk","priority":2}`),
		}}},
		{Content: "Done! I've added \"Buy milk\" to your list."},
	}}
	s := newStack(t, gateway)

	// Sign up and log back in
	registered, err := s.auth.Register(ctx, "Ada@Example.com", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)

	loggedIn, err := s.auth.Login(ctx, "ada@example.com", "correct horse battery")
	require.NoError(t, err)
	userID := loggedIn.User.ID

	// Chat turn drives the tool call
	turn, err := s.orchestrator.SubmitTurn(ctx, userID, agent.TurnInput{Message: "Remind me to buy milk"})
	require.NoError(t, err)
	assert.Contains(t, turn.Reply, "Buy milk")
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, agent.ResultOK, turn.ToolCalls[0].Result.Status)

	// The task shows up through the normal query path
	listHandler := queryhandlers.NewListTasksHandler(s.taskRepo)
	result, err := listHandler.Handle(ctx, queries.ListTasksQuery{UserID: userID})
	require.NoError(t, err)
	listView, ok := result.(queries.TaskListView)
	require.True(t, ok)
	require.Equal(t, 1, listView.Total)
	assert.Equal(t, "Buy milk", listView.Tasks[0].Title)

	// And the whole exchange is on record
	conversations, err := s.conversations.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	history, err := s.conversations.GetHistory(ctx, userID, conversations[0].ID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Remind me to buy milk", history[0].Content)
}

func TestChatFlow_TwoUsersStayIsolated(t *testing.T) {
	ctx := context.Background()
	gateway := &scriptedGateway{completions: []*ports.Completion{
		{ToolCalls: []ports.ToolCallRequest{{
			ID:        "call-1",
			Name:      agent.ToolCreateTask,
			Arguments: json.RawMessage(`{"title":"Ada's secret plan"}`),
		}}},
		{Content: "Created."},
		{ToolCalls: []ports.ToolCallRequest{{
			ID:        "call-2",
			Name:      agent.ToolListTasks,
			Arguments: json.RawMessage(`{}`),
		}}},
		{Content: "You have no tasks yet."},
	}}
	s := newStack(t, gateway)

	ada, err := s.auth.Register(ctx, "ada@example.com", "password-ada-1")
	require.NoError(t, err)
	grace, err := s.auth.Register(ctx, "grace@example.com", "password-grace-1")
	require.NoError(t, err)

	_, err = s.orchestrator.SubmitTurn(ctx, ada.User.ID, agent.TurnInput{Message: "Add my secret plan"})
	require.NoError(t, err)

	turn, err := s.orchestrator.SubmitTurn(ctx, grace.User.ID, agent.TurnInput{Message: "What are my tasks?"})
	require.NoError(t, err)
	require.Len(t, turn.ToolCalls, 1)

	var listView queries.TaskListView
	require.NoError(t, json.Unmarshal(turn.ToolCalls[0].Result.Data, &listView))
	assert.Equal(t, 0, listView.Total)
}

func TestChatFlow_DuplicateRegistrationRejected(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, &scriptedGateway{})

	_, err := s.auth.Register(ctx, "ada@example.com", "password-ada-1")
	require.NoError(t, err)

	_, err = s.auth.Register(ctx, "ADA@example.com", "another-password")
	require.Error(t, err)
}
