package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow-backend/domain/core/entities"
	pkgerrors "taskflow-backend/pkg/errors"
)

func newConversation(t *testing.T, repo *ConversationRepository, userID string) *entities.Conversation {
	t.Helper()
	conversation, err := entities.NewConversation(userID, "test")
	require.NoError(t, err)
	require.NoError(t, repo.CreateConversation(context.Background(), conversation))
	return conversation
}

func appendUserMessage(t *testing.T, repo *ConversationRepository, conversation *entities.Conversation, content string) {
	t.Helper()
	message, err := entities.NewMessage(conversation.ID, conversation.UserID, entities.RoleUser, content)
	require.NoError(t, err)
	require.NoError(t, repo.AppendMessage(context.Background(), message))
}

func TestConversationRepository_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conversation := newConversation(t, repo, "user-1")

	_, err := repo.GetConversation(ctx, "user-2", conversation.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.GetHistory(ctx, "user-2", conversation.ID, 50)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConversationRepository_CrossUserAppendRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conversation := newConversation(t, repo, "user-1")

	intruder, err := entities.NewMessage(conversation.ID, "user-2", entities.RoleUser, "let me in")
	require.NoError(t, err)
	err = repo.AppendMessage(ctx, intruder)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	record, err := entities.NewToolCallRecord(conversation.ID, "list_tasks", json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	err = repo.AppendToolCall(ctx, "user-2", record)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConversationRepository_HistoryOldestFirstWithWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conversation := newConversation(t, repo, "user-1")

	for i := 0; i < 10; i++ {
		appendUserMessage(t, repo, conversation, fmt.Sprintf("message %d", i))
	}

	history, err := repo.GetHistory(ctx, "user-1", conversation.ID, 4)
	require.NoError(t, err)
	require.Len(t, history, 4)

	// Window keeps the newest messages, replayed in chronological order
	assert.Equal(t, "message 6", history[0].Content)
	assert.Equal(t, "message 9", history[3].Content)
}

func TestConversationRepository_HistoryReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conversation := newConversation(t, repo, "user-1")

	for i := 0; i < 5; i++ {
		appendUserMessage(t, repo, conversation, fmt.Sprintf("message %d", i))
	}

	first, err := repo.GetHistory(ctx, "user-1", conversation.ID, 3)
	require.NoError(t, err)
	second, err := repo.GetHistory(ctx, "user-1", conversation.ID, 3)
	require.NoError(t, err)

	// Reading does not mutate: same messages, same order, every time
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestConversationRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	newConversation(t, repo, "user-1")
	newConversation(t, repo, "user-1")
	newConversation(t, repo, "user-2")

	mine, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := repo.ListByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestConversationRepository_ToolCallsInOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conversation := newConversation(t, repo, "user-1")

	for _, name := range []string{"create_task", "list_tasks"} {
		record, err := entities.NewToolCallRecord(conversation.ID, name, json.RawMessage(`{}`), json.RawMessage(`{"status":"ok"}`))
		require.NoError(t, err)
		require.NoError(t, repo.AppendToolCall(ctx, "user-1", record))
	}

	records, err := repo.GetToolCalls(ctx, "user-1", conversation.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "create_task", records[0].ToolName)
	assert.Equal(t, "list_tasks", records[1].ToolName)
}
