// Package orchestrator runs a prompt turn: it asks the model which actions
// to take, executes the requested invocations against the document in order,
// and records every step in the session log.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docwright/docwright/internal/actions"
	"github.com/docwright/docwright/internal/activity"
	"github.com/docwright/docwright/internal/schema"
	"github.com/docwright/docwright/internal/shared/llmutils"
)

// TurnAction is the label of a turn's own log record.
const TurnAction = "Open Prompt"

// Orchestrator is the action orchestration loop.
type Orchestrator struct {
	registry  *actions.Registry
	completer schema.Completer
	editor    schema.Editor
	logger    *Logger
}

// New wires an Orchestrator. log is shared with whoever renders it.
func New(registry *actions.Registry, completer schema.Completer, editor schema.Editor, log *activity.Log) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		completer: completer,
		editor:    editor,
		logger:    NewLogger(log),
	}
}

// RunTurn executes one prompt turn. For a text reply it returns the text;
// for invocations it returns one result line per invocation. Errors raised
// before the reply is classified are recorded on the turn and returned.
func (o *Orchestrator) RunTurn(ctx context.Context, prompt string) (string, error) {
	turnID := o.logger.Start(TurnAction, prompt)
	o.logger.Status(turnID, activity.StatusOpenPrompt)

	slog.Info("orchestrator: turn started", "id", turnID, "prompt", llmutils.Truncate(prompt, 80))

	outcome, err := o.completer.RequestCompletion(ctx, prompt, actions.BuildSchemas(o.registry.List()))
	if err != nil {
		o.logger.FailCurrent(turnID, activity.StatusOpenPromptFail, err)
		slog.Error("orchestrator: turn failed", "id", turnID, "err", err)
		return "", err
	}

	if !outcome.HasInvocations() {
		o.logger.Finish(turnID, activity.StatusNoToolsRun, outcome.Content)
		slog.Info("orchestrator: no tools run", "id", turnID, "length", len(outcome.Content))
		return outcome.Content, nil
	}

	n := len(outcome.Invocations)
	o.logger.Status(turnID, activity.StatusExecuting(n))
	slog.Info("orchestrator: executing", "id", turnID, "calls", llmutils.ToolHint(outcome.Invocations))

	lines := o.ExecuteAll(ctx, outcome.Invocations)

	o.logger.Status(turnID, activity.StatusCompleted(n))
	return strings.Join(lines, "\n"), nil
}

// ExecuteAll runs invocations one at a time in the given order. Later
// invocations may target text produced by earlier ones.
func (o *Orchestrator) ExecuteAll(ctx context.Context, invs []schema.Invocation) []string {
	lines := make([]string, 0, len(invs))
	for _, inv := range invs {
		lines = append(lines, o.ExecuteInvocation(ctx, inv))
	}
	return lines
}

// ExecuteInvocation runs one invocation and returns its result line.
// Failures are recorded on the invocation's own record and never returned.
func (o *Orchestrator) ExecuteInvocation(ctx context.Context, inv schema.Invocation) string {
	action, ok := o.registry.Lookup(inv.FunctionName)
	if !ok {
		err := &schema.ToolNotFoundError{Name: inv.FunctionName}
		id := o.logger.Start(inv.FunctionName, inv.Prompt())
		o.logger.Fail(id, activity.StatusError, err)
		slog.Warn("orchestrator: unknown tool", "name", inv.FunctionName)
		return fmt.Sprintf("✗ %s: %s", inv.FunctionName, err.Error())
	}

	label := action.Label()
	prompt := inv.Prompt()
	id := o.logger.Start(label, prompt)

	if inv.ParseErr != nil {
		o.logger.Fail(id, activity.StatusError, inv.ParseErr)
		return failureLine(label, inv.ParseErr)
	}

	slog.Info("orchestrator: tool call", "id", id, "name", action.Key(), "prompt", llmutils.Truncate(prompt, 200))

	result, err := action.Execute(ctx, o.editor, prompt, o.logger.Subscriber(id))
	if err != nil {
		opErr := &schema.OperationError{Action: action.Key(), Err: err}
		o.logger.Fail(id, activity.StatusError, opErr)
		slog.Warn("orchestrator: tool failed", "id", id, "name", action.Key(), "err", err)
		return failureLine(label, opErr)
	}

	o.logger.Finish(id, activity.StatusDone, result)
	return fmt.Sprintf("✓ %s: \"%s\"", label, prompt)
}

func failureLine(label string, err error) string {
	return fmt.Sprintf("✗ %s: Error - %s", label, err.Error())
}
