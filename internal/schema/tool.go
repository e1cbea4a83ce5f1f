// Package schema contains the core contracts shared across docwright packages.
// Concrete implementations live in their respective packages; this package is
// the single canonical source of truth for every interface definition.
package schema

import "context"

// PromptParam is the only parameter every action schema declares.
const PromptParam = "prompt"

// PromptParamDescription is the fixed description of PromptParam.
const PromptParamDescription = "The specific instruction or prompt for this action"

// Action is one entry of the fixed action catalog the model may invoke.
// Implementations are immutable once the registry is built.
type Action interface {
	Key() string
	Label() string
	Description() string
	// Execute runs the action against editor with the model's free-text
	// instruction. Lifecycle events of the underlying operation go to sub.
	Execute(ctx context.Context, editor Editor, instruction string, sub Subscriber) (string, error)
}

// ToolSchema is the model-callable projection of an Action.
type ToolSchema struct {
	Name        string
	Description string
}

// Parameters returns the JSON Schema of the single required "prompt" argument.
func (s ToolSchema) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			PromptParam: map[string]any{
				"type":        "string",
				"description": PromptParamDescription,
			},
		},
		"required": []string{PromptParam},
	}
}

// WireMap serialises the schema into the OpenAI function-calling format.
func (s ToolSchema) WireMap() map[string]any {
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        s.Name,
			"description": s.Description,
			"parameters":  s.Parameters(),
		},
	}
}
