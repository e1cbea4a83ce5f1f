package docai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docwright/docwright/internal/document"
	"github.com/docwright/docwright/internal/schema"
	"github.com/docwright/docwright/internal/shared/llmutils"
)

const (
	locateSystem = `You locate passages in a document.
Reply with JSON only, no prose: {"matches": ["<text copied exactly from the document>"]}.
%s
If nothing matches, reply {"matches": []}.`

	editSystem = `You edit a document.
Reply with JSON only, no prose: {"edits": [{"find": "<text copied exactly from the document>", "replace": "<new text>"}]}.
%s
If nothing should change, reply {"edits": []}.`

	commentSystem = `You review a document and leave comments.
Reply with JSON only, no prose: {"comments": [{"anchor": "<text copied exactly from the document>", "text": "<comment>"}]}.
%s
If there is nothing to comment on, reply {"comments": []}.`

	summarizeSystem = `You summarize documents. Reply with the summary only, in plain text.`

	insertSystem = `You write new content for a document. Reply with the content to insert only, in plain text, matching the document's tone.`

	oneItem   = "Return exactly one item: the best match for the instruction."
	manyItems = "Return every item the instruction asks for."
)

type edit struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

type comment struct {
	Anchor string `json:"anchor"`
	Text   string `json:"text"`
}

func cardinality(many bool) string {
	if many {
		return manyItems
	}
	return oneItem
}

func (e *Editor) locate(ctx context.Context, instruction string, many bool, sub schema.Subscriber) ([]string, error) {
	reply, err := e.stream(ctx, fmt.Sprintf(locateSystem, cardinality(many)), e.userPrompt(instruction), sub)
	if err != nil {
		return nil, err
	}
	var body struct {
		Matches []string `json:"matches"`
	}
	if err := decodeReply(reply, &body); err != nil {
		return nil, err
	}
	var out []string
	for _, m := range body.Matches {
		if m != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no match for %q", document.ErrNotFound, instruction)
	}
	return out, nil
}

func (e *Editor) edits(ctx context.Context, instruction string, many bool, sub schema.Subscriber) ([]edit, error) {
	reply, err := e.stream(ctx, fmt.Sprintf(editSystem, cardinality(many)), e.userPrompt(instruction), sub)
	if err != nil {
		return nil, err
	}
	var body struct {
		Edits []edit `json:"edits"`
	}
	if err := decodeReply(reply, &body); err != nil {
		return nil, err
	}
	var out []edit
	for _, ed := range body.Edits {
		if ed.Find != "" {
			out = append(out, ed)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: nothing to edit for %q", document.ErrNotFound, instruction)
	}
	return out, nil
}

func (e *Editor) comments(ctx context.Context, instruction string, many bool, sub schema.Subscriber) ([]comment, error) {
	reply, err := e.stream(ctx, fmt.Sprintf(commentSystem, cardinality(many)), e.userPrompt(instruction), sub)
	if err != nil {
		return nil, err
	}
	var body struct {
		Comments []comment `json:"comments"`
	}
	if err := decodeReply(reply, &body); err != nil {
		return nil, err
	}
	var out []comment
	for _, c := range body.Comments {
		if c.Text != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no comment produced for %q", instruction)
	}
	return out, nil
}

// decodeReply unmarshals a JSON object out of a model reply, tolerating code
// fences and prose around the object.
func decodeReply(reply string, v any) error {
	raw := llmutils.StripCodeFence(reply)
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("document AI returned malformed JSON: %s", llmutils.Truncate(reply, 200))
}
