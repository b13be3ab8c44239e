package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"taskflow-backend/domain/core/entities"
	"taskflow-backend/domain/core/valueobjects"
	pkgerrors "taskflow-backend/pkg/errors"
)

// ConversationRepository implements ports.ConversationRepository on
// PostgreSQL. Appends re-verify conversation ownership inside the write so
// a cross-user append cannot succeed even with a guessed conversation ID.
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository creates a PostgreSQL-backed conversation repository
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

type conversationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r conversationRow) toEntity() (*entities.Conversation, error) {
	id, err := valueobjects.NewConversationIDFromString(r.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "stored conversation has invalid id")
	}
	return &entities.Conversation{
		ID:        id,
		UserID:    r.UserID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type messageRow struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	UserID         string    `db:"user_id"`
	Role           string    `db:"role"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r messageRow) toEntity() (*entities.Message, error) {
	conversationID, err := valueobjects.NewConversationIDFromString(r.ConversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "stored message has invalid conversation id")
	}
	return &entities.Message{
		ID:             r.ID,
		ConversationID: conversationID,
		UserID:         r.UserID,
		Role:           entities.MessageRole(r.Role),
		Content:        r.Content,
		CreatedAt:      r.CreatedAt,
	}, nil
}

type toolCallRow struct {
	ID             string          `db:"id"`
	ConversationID string          `db:"conversation_id"`
	ToolName       string          `db:"tool_name"`
	Arguments      json.RawMessage `db:"arguments"`
	Result         json.RawMessage `db:"result"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r toolCallRow) toEntity() (*entities.ToolCallRecord, error) {
	conversationID, err := valueobjects.NewConversationIDFromString(r.ConversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "stored tool call has invalid conversation id")
	}
	return &entities.ToolCallRecord{
		ID:             r.ID,
		ConversationID: conversationID,
		ToolName:       r.ToolName,
		Arguments:      r.Arguments,
		Result:         r.Result,
		CreatedAt:      r.CreatedAt,
	}, nil
}

// CreateConversation persists a new conversation
func (r *ConversationRepository) CreateConversation(ctx context.Context, conversation *entities.Conversation) error {
	const query = `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (:id, :user_id, :title, :created_at, :updated_at)`

	row := conversationRow{
		ID:        conversation.ID.String(),
		UserID:    conversation.UserID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return pkgerrors.NewDatabaseError("create conversation", err)
	}
	return nil
}

// GetConversation retrieves a conversation owned by userID
func (r *ConversationRepository) GetConversation(ctx context.Context, userID string, id valueobjects.ConversationID) (*entities.Conversation, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations WHERE id = $1 AND user_id = $2`

	var row conversationRow
	if err := r.db.GetContext(ctx, &row, query, id.String(), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NewNotFoundError("conversation")
		}
		return nil, pkgerrors.NewDatabaseError("get conversation", err)
	}
	return row.toEntity()
}

// ListByUser retrieves all conversations owned by userID, most recent first
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Conversation, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`

	var rows []conversationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, pkgerrors.NewDatabaseError("list conversations", err)
	}

	conversations := make([]*entities.Conversation, 0, len(rows))
	for _, row := range rows {
		conversation, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}

// AppendMessage appends a message to a conversation the author owns
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *entities.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, user_id, role, content, created_at)
		SELECT $1, c.id, $3, $4, $5, $6
		FROM conversations c WHERE c.id = $2 AND c.user_id = $3`

	result, err := r.db.ExecContext(ctx, query,
		message.ID, message.ConversationID.String(), message.UserID,
		string(message.Role), message.Content, message.CreatedAt,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("append message", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("append message", err)
	}
	if affected == 0 {
		return pkgerrors.NewNotFoundError("conversation")
	}

	const touch = `UPDATE conversations SET updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, touch, message.ConversationID.String(), message.CreatedAt); err != nil {
		return pkgerrors.NewDatabaseError("touch conversation", err)
	}
	return nil
}

// AppendToolCall appends a tool call record to a conversation the user owns
func (r *ConversationRepository) AppendToolCall(ctx context.Context, userID string, record *entities.ToolCallRecord) error {
	const query = `
		INSERT INTO tool_calls (id, conversation_id, tool_name, arguments, result, created_at)
		SELECT $1, c.id, $4, $5, $6, $7
		FROM conversations c WHERE c.id = $2 AND c.user_id = $3`

	arguments := record.Arguments
	if len(arguments) == 0 {
		arguments = json.RawMessage(`{}`)
	}
	result, err := r.db.ExecContext(ctx, query,
		record.ID, record.ConversationID.String(), userID,
		record.ToolName, []byte(arguments), []byte(record.Result), record.CreatedAt,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("append tool call", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("append tool call", err)
	}
	if affected == 0 {
		return pkgerrors.NewNotFoundError("conversation")
	}
	return nil
}

// GetHistory retrieves up to limit messages, oldest first. The window keeps
// the most recent messages: the query reads newest first with the limit,
// then the slice is reversed into chronological order.
func (r *ConversationRepository) GetHistory(ctx context.Context, userID string, id valueobjects.ConversationID, limit int) ([]*entities.Message, error) {
	if _, err := r.GetConversation(ctx, userID, id); err != nil {
		return nil, err
	}

	const query = `
		SELECT id, conversation_id, user_id, role, content, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC LIMIT $2`

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, id.String(), limit); err != nil {
		return nil, pkgerrors.NewDatabaseError("get history", err)
	}

	messages := make([]*entities.Message, len(rows))
	for i, row := range rows {
		message, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		messages[len(rows)-1-i] = message
	}
	return messages, nil
}

// GetToolCalls retrieves tool call records in dispatch order. Ordering uses
// the insertion sequence rather than created_at, which is not unique.
func (r *ConversationRepository) GetToolCalls(ctx context.Context, userID string, id valueobjects.ConversationID) ([]*entities.ToolCallRecord, error) {
	if _, err := r.GetConversation(ctx, userID, id); err != nil {
		return nil, err
	}

	const query = `
		SELECT id, conversation_id, tool_name, arguments, result, created_at
		FROM tool_calls WHERE conversation_id = $1 ORDER BY seq`

	var rows []toolCallRow
	if err := r.db.SelectContext(ctx, &rows, query, id.String()); err != nil {
		return nil, pkgerrors.NewDatabaseError("get tool calls", err)
	}

	records := make([]*entities.ToolCallRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
