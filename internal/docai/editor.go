// Package docai implements the document-editing capability surface: each
// operation asks a model to interpret a free-text instruction against the
// current document, streams the reply, and applies the result.
package docai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/docwright/docwright/internal/document"
	"github.com/docwright/docwright/internal/schema"
	"github.com/docwright/docwright/internal/shared/llmutils"
)

// Config configures the model behind the editor.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	HighlightColor string
}

// Editor implements schema.Editor over a document.Document.
type Editor struct {
	doc            *document.Document
	client         openai.Client
	configured     bool
	model          string
	temperature    float64
	highlightColor string
}

var _ schema.Editor = (*Editor)(nil)

// New creates an Editor bound to doc. httpClient may be nil.
func New(doc *document.Document, cfg Config, httpClient *http.Client) *Editor {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	// Local and proxied endpoints need a different base URL.
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Editor{
		doc:            doc,
		client:         openai.NewClient(opts...),
		configured:     cfg.APIKey != "" || cfg.BaseURL != "",
		model:          llmutils.StringOrDefault(cfg.Model, "gpt-4o-mini"),
		temperature:    cfg.Temperature,
		highlightColor: cfg.HighlightColor,
	}
}

func (e *Editor) Find(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		matches, err := e.locate(ctx, instruction, false, sub)
		if err != nil {
			return "", err
		}
		if _, err := e.doc.Find(matches[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("Found %q", matches[0]), nil
	})
}

func (e *Editor) FindAll(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		matches, err := e.locate(ctx, instruction, true, sub)
		if err != nil {
			return "", err
		}
		total := 0
		for _, m := range matches {
			spans, err := e.doc.FindAll(m)
			if err != nil {
				slog.Debug("docai: match not in document", "match", m)
				continue
			}
			total += len(spans)
		}
		if total == 0 {
			return "", fmt.Errorf("%w: no match for %q", document.ErrNotFound, instruction)
		}
		return fmt.Sprintf("Found %d occurrence(s)", total), nil
	})
}

func (e *Editor) Highlight(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		matches, err := e.locate(ctx, instruction, true, sub)
		if err != nil {
			return "", err
		}
		n := 0
		for _, m := range matches {
			hs, err := e.doc.Highlight(m, e.highlightColor, false)
			if err != nil {
				return "", err
			}
			n += len(hs)
		}
		return fmt.Sprintf("Highlighted %d passage(s)", n), nil
	})
}

func (e *Editor) Replace(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		edits, err := e.edits(ctx, instruction, false, sub)
		if err != nil {
			return "", err
		}
		if _, err := e.doc.Replace(edits[0].Find, edits[0].Replace, false); err != nil {
			return "", err
		}
		return fmt.Sprintf("Replaced %q with %q", edits[0].Find, edits[0].Replace), nil
	})
}

func (e *Editor) ReplaceAll(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		edits, err := e.edits(ctx, instruction, true, sub)
		if err != nil {
			return "", err
		}
		total := 0
		for _, ed := range edits {
			n, err := e.doc.Replace(ed.Find, ed.Replace, true)
			if err != nil {
				return "", err
			}
			total += n
		}
		return fmt.Sprintf("Replaced %d occurrence(s)", total), nil
	})
}

func (e *Editor) InsertTrackedChange(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		edits, err := e.edits(ctx, instruction, false, sub)
		if err != nil {
			return "", err
		}
		if _, err := e.doc.SuggestChange(edits[0].Find, edits[0].Replace, false); err != nil {
			return "", err
		}
		return fmt.Sprintf("Suggested %q → %q", edits[0].Find, edits[0].Replace), nil
	})
}

func (e *Editor) InsertTrackedChanges(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		edits, err := e.edits(ctx, instruction, true, sub)
		if err != nil {
			return "", err
		}
		total := 0
		for _, ed := range edits {
			changes, err := e.doc.SuggestChange(ed.Find, ed.Replace, false)
			if err != nil {
				return "", err
			}
			total += len(changes)
		}
		return fmt.Sprintf("Suggested %d tracked change(s)", total), nil
	})
}

func (e *Editor) InsertComment(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		comments, err := e.comments(ctx, instruction, false, sub)
		if err != nil {
			return "", err
		}
		if _, err := e.doc.AddComment(comments[0].Anchor, comments[0].Text); err != nil {
			return "", err
		}
		return fmt.Sprintf("Commented on %q", comments[0].Anchor), nil
	})
}

func (e *Editor) InsertComments(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		comments, err := e.comments(ctx, instruction, true, sub)
		if err != nil {
			return "", err
		}
		for _, c := range comments {
			if _, err := e.doc.AddComment(c.Anchor, c.Text); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("Added %d comment(s)", len(comments)), nil
	})
}

func (e *Editor) Summarize(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		summary, err := e.stream(ctx, summarizeSystem, e.userPrompt(instruction), sub)
		if err != nil {
			return "", err
		}
		if summary == "" {
			return "", fmt.Errorf("document AI returned an empty summary")
		}
		return summary, nil
	})
}

func (e *Editor) InsertContent(ctx context.Context, instruction string, sub schema.Subscriber) (string, error) {
	return e.run(sub, func() (string, error) {
		content, err := e.stream(ctx, insertSystem, e.userPrompt(instruction), sub)
		if err != nil {
			return "", err
		}
		content = llmutils.StripCodeFence(content)
		if content == "" {
			return "", fmt.Errorf("document AI returned no content to insert")
		}
		if err := e.doc.Insert(content, ""); err != nil {
			return "", err
		}
		return content, nil
	})
}

// run reports a failure of fn to sub before returning it.
func (e *Editor) run(sub schema.Subscriber, fn func() (string, error)) (string, error) {
	out, err := fn()
	if err != nil {
		sub.Emit(schema.Event{Kind: schema.EventError, Err: err})
	}
	return out, err
}

func (e *Editor) userPrompt(instruction string) string {
	var sb strings.Builder
	sb.WriteString("Document:\n<<<\n")
	sb.WriteString(e.doc.Text())
	sb.WriteString("\n>>>\n\nInstruction: ")
	sb.WriteString(instruction)
	return sb.String()
}

// stream runs one streamed completion and reports its lifecycle to sub.
// It returns the full reply with any think block removed.
func (e *Editor) stream(ctx context.Context, system, user string, sub schema.Subscriber) (string, error) {
	if !e.configured {
		return "", &schema.ConfigurationError{Setting: "docAI.apiKey", Message: "document AI is not configured: set DOCWRIGHT_DOCAI_KEY or docAI.apiBase"}
	}

	sub.Emit(schema.Event{Kind: schema.EventReady})

	s := e.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Opt[float64](e.temperature),
	})
	defer s.Close()

	var sb strings.Builder
	started := false
	for s.Next() {
		chunk := s.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if !started {
			sub.Emit(schema.Event{Kind: schema.EventStreamStart})
			started = true
		}
		sb.WriteString(delta)
		sub.Emit(schema.Event{Kind: schema.EventPartial, Text: sb.String()})
	}
	if err := s.Err(); err != nil {
		return "", fmt.Errorf("document AI stream: %w", err)
	}

	out := llmutils.StripThink(sb.String())
	if !started {
		sub.Emit(schema.Event{Kind: schema.EventStreamStart})
	}
	sub.Emit(schema.Event{Kind: schema.EventStreamEnd, Text: out})
	return out, nil
}
