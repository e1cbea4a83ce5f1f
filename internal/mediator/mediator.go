// Package mediator performs the single completion round trip of a turn and
// classifies the reply as plain text or a batch of invocations.
package mediator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docwright/docwright/internal/actions"
	"github.com/docwright/docwright/internal/schema"
)

const (
	// Temperature is the sampling temperature of every completion request.
	Temperature = 0.7
	// MaxTokens caps the length of a completion.
	MaxTokens = 1000

	defaultTimeout = 120 * time.Second
)

// Mediator talks to an OpenAI-compatible completion endpoint, usually the
// relay.
type Mediator struct {
	url          string
	extraHeaders map[string]string
	httpClient   *http.Client
}

var _ schema.Completer = (*Mediator)(nil)

// New creates a Mediator posting to url. httpClient may be nil.
func New(url string, extraHeaders map[string]string, httpClient *http.Client) *Mediator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Mediator{
		url:          strings.TrimSpace(url),
		extraHeaders: extraHeaders,
		httpClient:   httpClient,
	}
}

// RequestCompletion sends prompt with schemas and classifies the reply.
func (m *Mediator) RequestCompletion(ctx context.Context, prompt string, schemas []schema.ToolSchema) (schema.Outcome, error) {
	if m.url == "" {
		return schema.Outcome{}, &schema.ConfigurationError{
			Setting: "DOCWRIGHT_COMPLETION_URL",
			Message: "completion endpoint is not configured: set DOCWRIGHT_COMPLETION_URL or completion.url",
		}
	}

	body := map[string]any{
		"messages":    []schema.Message{schema.NewUserMessage(prompt)},
		"tools":       actions.Definitions(schemas),
		"tool_choice": "auto",
		"temperature": Temperature,
		"max_tokens":  MaxTokens,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return schema.Outcome{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(data))
	if err != nil {
		return schema.Outcome{}, &schema.TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range m.extraHeaders {
		req.Header.Set(k, v)
	}

	slog.Debug("mediator: requesting completion", "url", m.url, "tools", len(schemas))

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return schema.Outcome{}, &schema.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Outcome{}, &schema.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return schema.Outcome{}, &schema.TransportError{
			StatusCode: resp.StatusCode,
			Body:       friendlyHTTPError(resp.StatusCode, raw),
		}
	}

	return Classify(raw)
}

// completionBody is the subset of the chat completion response we care about.
type completionBody struct {
	Choices []struct {
		Message struct {
			Content   any `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Content any `json:"content"`
}

// Classify turns a raw completion body into an Outcome. Text falls back
// through message content, the top-level "content" field, and finally the
// raw body, so it is never silently empty.
func Classify(raw []byte) (schema.Outcome, error) {
	var body completionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.Outcome{}, fmt.Errorf("parse completion response: %w", err)
	}

	var msgContent string
	if len(body.Choices) > 0 {
		msg := body.Choices[0].Message
		if len(msg.ToolCalls) > 0 {
			invs := make([]schema.Invocation, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				inv := schema.NewInvocation(tc.ID, tc.Function.Name, tc.Function.Arguments)
				if inv.ParseErr != nil {
					slog.Warn("mediator: malformed tool arguments", "tool", tc.Function.Name, "err", inv.ParseErr)
				}
				invs = append(invs, inv)
			}
			return schema.Outcome{Kind: schema.OutcomeInvocations, Invocations: invs}, nil
		}
		msgContent = contentString(msg.Content)
	}

	content := msgContent
	if content == "" {
		content = contentString(body.Content)
	}
	if content == "" {
		content = string(raw)
	}
	return schema.Outcome{Kind: schema.OutcomeText, Content: content}, nil
}

// contentString flattens string or text-part-array content.
func contentString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var sb strings.Builder
		for _, part := range c {
			if m, ok := part.(map[string]any); ok {
				if s, ok := m["text"].(string); ok {
					sb.WriteString(s)
				}
			}
		}
		return sb.String()
	}
	return ""
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	var e struct {
		Error any `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != nil {
		switch v := e.Error.(type) {
		case string:
			return v
		case map[string]any:
			if msg, ok := v["message"].(string); ok {
				return msg
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
