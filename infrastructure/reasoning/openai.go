// Package reasoning implements the ReasoningGateway port against any
// OpenAI-compatible chat completions endpoint.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/infrastructure/config"
	pkgerrors "taskflow-backend/pkg/errors"
)

const completionsPath = "/chat/completions"

// OpenAIGateway calls an OpenAI-compatible /chat/completions endpoint.
// Failures are classified into the error types the orchestrator keys its
// apology replies off: configuration (missing key, 401/403), rate limit
// (429), external (everything else).
type OpenAIGateway struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewOpenAIGateway creates a gateway from configuration
func NewOpenAIGateway(cfg *config.Config, logger *zap.Logger) *OpenAIGateway {
	return &OpenAIGateway{
		baseURL: strings.TrimRight(cfg.ReasoningBaseURL, "/"),
		apiKey:  cfg.ReasoningAPIKey,
		model:   cfg.ReasoningModel,
		client:  &http.Client{Timeout: cfg.ReasoningTimeout},
		logger:  logger,
	}
}

// Wire types for the chat completions request/response

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete performs one chat completions exchange
func (g *OpenAIGateway) Complete(ctx context.Context, messages []ports.ChatMessage, tools []ports.ToolDefinition) (*ports.Completion, error) {
	if g.apiKey == "" {
		return nil, pkgerrors.NewConfigurationError("reasoning API key is not configured")
	}

	body, err := json.Marshal(g.buildRequest(messages, tools))
	if err != nil {
		return nil, pkgerrors.NewExternalError("reasoning", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewExternalError("reasoning", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, pkgerrors.NewExternalError("reasoning", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.NewExternalError("reasoning", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		g.logger.Error("reasoning service rejected credentials", zap.Int("status", resp.StatusCode))
		return nil, pkgerrors.NewConfigurationError("reasoning API key was rejected")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, pkgerrors.NewRateLimitError("reasoning service rate limit exceeded")
	case resp.StatusCode != http.StatusOK:
		g.logger.Error("reasoning service returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return nil, pkgerrors.NewExternalError("reasoning", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var parsed wireResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.NewExternalError("reasoning", fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return nil, pkgerrors.NewExternalError("reasoning", fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return nil, pkgerrors.NewExternalError("reasoning", fmt.Errorf("response contained no choices"))
	}

	message := parsed.Choices[0].Message
	completion := &ports.Completion{Content: message.Content}
	for _, call := range message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ports.ToolCallRequest{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	return completion, nil
}

func (g *OpenAIGateway) buildRequest(messages []ports.ChatMessage, tools []ports.ToolDefinition) wireRequest {
	request := wireRequest{Model: g.model}

	for _, message := range messages {
		wire := wireMessage{
			Role:       string(message.Role),
			Content:    message.Content,
			ToolCallID: message.ToolCallID,
			Name:       message.Name,
		}
		for _, call := range message.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, wireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: wireFunctionCall{
					Name:      call.Name,
					Arguments: string(call.Arguments),
				},
			})
		}
		request.Messages = append(request.Messages, wire)
	}

	for _, tool := range tools {
		request.Tools = append(request.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return request
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
