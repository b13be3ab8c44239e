package ports

import (
	"context"
	"encoding/json"
)

// ChatRole is the role attached to a message sent to the reasoning service
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleTool      ChatRole = "tool"
)

// ChatMessage is one entry in the message list consumed by the gateway
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content,omitempty"`

	// Set on the assistant message that requested tool calls
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`

	// Set on tool-result messages
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolCallRequest is one tool invocation requested by the reasoning service
type ToolCallRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition describes one tool in the catalog offered to the service
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Completion is the outcome of one reasoning call: either assistant text,
// or one or more requested tool calls (Content may then be empty).
type Completion struct {
	Content   string
	ToolCalls []ToolCallRequest
}

// ReasoningGateway is the single blocking call abstraction over the external
// natural-language reasoning capability. Implementations classify failures
// as configuration, rate-limit, or external errors (pkg/errors types) so the
// orchestrator can map them without inspecting transport details.
type ReasoningGateway interface {
	Complete(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (*Completion, error)
}
