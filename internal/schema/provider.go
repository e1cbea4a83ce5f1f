package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// OutcomeKind classifies a completion reply.
type OutcomeKind string

const (
	OutcomeText        OutcomeKind = "text"
	OutcomeInvocations OutcomeKind = "invocations"
)

// Invocation is one function call requested by the model.
type Invocation struct {
	ID           string
	FunctionName string
	RawArguments string
	Arguments    map[string]any
	// ParseErr is set when RawArguments is not a JSON object. It is reported
	// against this invocation only.
	ParseErr error
}

// NewInvocation parses raw into an Invocation. A malformed payload does not
// fail the call; it is kept on ParseErr.
func NewInvocation(id, name, raw string) Invocation {
	inv := Invocation{ID: id, FunctionName: name, RawArguments: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		inv.Arguments = map[string]any{}
		return inv
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil || args == nil {
		if err == nil {
			err = fmt.Errorf("arguments are not an object")
		}
		inv.ParseErr = &ParseError{FunctionName: name, Raw: raw, Err: err}
		inv.Arguments = map[string]any{}
		return inv
	}
	inv.Arguments = args
	return inv
}

// Prompt returns the "prompt" argument, or "" if absent or not a string.
func (i Invocation) Prompt() string {
	s, _ := i.Arguments[PromptParam].(string)
	return s
}

// Outcome is the classified result of one completion round trip.
type Outcome struct {
	Kind        OutcomeKind
	Content     string
	Invocations []Invocation
}

// HasInvocations reports whether the model asked for at least one call.
func (o Outcome) HasInvocations() bool { return o.Kind == OutcomeInvocations && len(o.Invocations) > 0 }

// Completer performs one completion round trip and classifies the reply.
type Completer interface {
	RequestCompletion(ctx context.Context, prompt string, schemas []ToolSchema) (Outcome, error)
}
