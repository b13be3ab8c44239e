// Package agent implements the conversational turn orchestrator: the tool
// catalog offered to the reasoning service, the registry that executes
// requested tool calls against the task service, and the state machine
// driving a full user turn.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"taskflow-backend/application/ports"
)

// Tool names exposed to the reasoning service
const (
	ToolCreateTask = "create_task"
	ToolListTasks  = "list_tasks"
	ToolUpdateTask = "update_task"
	ToolDeleteTask = "delete_task"
)

// SystemPrompt frames every reasoning exchange. The acting user's identity
// is never part of the prompt; it is injected server-side at dispatch time.
const SystemPrompt = `You are a helpful task management assistant. You help the user create, list, update, complete, and delete their tasks by calling the provided tools.

Guidelines:
- Use the tools whenever the user asks to change or inspect their tasks; never invent task data.
- When a tool result reports an error, explain the problem to the user plainly and suggest what to try next.
- When referring to dates, use ISO 8601 format (YYYY-MM-DD).
- Keep replies short and conversational.`

type toolSchema struct {
	definition ports.ToolDefinition
	compiled   *jsonschema.Schema
}

// Catalog holds the fixed set of tool definitions together with their
// compiled argument schemas.
type Catalog struct {
	order []string
	tools map[string]toolSchema
}

var rawSchemas = map[string]string{
	ToolCreateTask: `{
		"type": "object",
		"properties": {
			"title":       {"type": "string", "minLength": 1, "maxLength": 200, "description": "Short task title"},
			"description": {"type": "string", "maxLength": 1000, "description": "Optional longer details"},
			"priority":    {"type": "integer", "minimum": 1, "maximum": 5, "description": "1 (lowest) to 5 (highest)"},
			"due_date":    {"type": "string", "description": "Due date, ISO 8601"}
		},
		"required": ["title"],
		"additionalProperties": false
	}`,
	ToolListTasks: `{
		"type": "object",
		"properties": {
			"status": {"type": "string", "enum": ["all", "pending", "completed"], "description": "Completion filter, defaults to all"}
		},
		"additionalProperties": false
	}`,
	ToolUpdateTask: `{
		"type": "object",
		"properties": {
			"task_id":     {"type": "string", "minLength": 1, "description": "ID of the task to modify"},
			"title":       {"type": "string", "minLength": 1, "maxLength": 200},
			"description": {"type": "string", "maxLength": 1000},
			"completed":   {"type": "boolean"},
			"priority":    {"type": "integer", "minimum": 1, "maximum": 5},
			"due_date":    {"type": "string"}
		},
		"required": ["task_id"],
		"additionalProperties": false
	}`,
	ToolDeleteTask: `{
		"type": "object",
		"properties": {
			"task_id": {"type": "string", "minLength": 1, "description": "ID of the task to delete"}
		},
		"required": ["task_id"],
		"additionalProperties": false
	}`,
}

var toolDescriptions = map[string]string{
	ToolCreateTask: "Create a new task for the user. Title is required; description, priority and due date are optional.",
	ToolListTasks:  "List the user's tasks, optionally filtered by completion status.",
	ToolUpdateTask: "Update fields of an existing task. Only the supplied fields change.",
	ToolDeleteTask: "Permanently delete one of the user's tasks.",
}

// NewCatalog compiles the built-in tool schemas. Compilation failure means a
// programming error in the schema literals, so callers treat it as fatal.
func NewCatalog() (*Catalog, error) {
	order := []string{ToolCreateTask, ToolListTasks, ToolUpdateTask, ToolDeleteTask}
	tools := make(map[string]toolSchema, len(order))

	for _, name := range order {
		raw := rawSchemas[name]
		compiler := jsonschema.NewCompiler()
		resource := name + ".json"
		if err := compiler.AddResource(resource, strings.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema resource for %s: %w", name, err)
		}
		compiled, err := compiler.Compile(resource)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", name, err)
		}
		tools[name] = toolSchema{
			definition: ports.ToolDefinition{
				Name:        name,
				Description: toolDescriptions[name],
				Parameters:  json.RawMessage(raw),
			},
			compiled: compiled,
		}
	}

	return &Catalog{order: order, tools: tools}, nil
}

// Definitions returns the tool definitions in stable order for the gateway
func (c *Catalog) Definitions() []ports.ToolDefinition {
	defs := make([]ports.ToolDefinition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.tools[name].definition)
	}
	return defs
}

// Has reports whether the catalog knows the named tool
func (c *Catalog) Has(name string) bool {
	_, ok := c.tools[name]
	return ok
}

// ValidateArguments checks raw tool arguments against the tool's schema
func (c *Catalog) ValidateArguments(name string, arguments json.RawMessage) error {
	tool, ok := c.tools[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	if len(arguments) == 0 {
		arguments = json.RawMessage(`{}`)
	}

	var decoded interface{}
	if err := json.Unmarshal(arguments, &decoded); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if err := tool.compiled.Validate(decoded); err != nil {
		return err
	}
	return nil
}
