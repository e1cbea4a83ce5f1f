package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docwright/docwright/internal/schema"
)

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Ellipsis is appended by Truncate when it shortens a string.
const Ellipsis = "..."

// Truncate shortens s to at most n characters, adding "..." if it was truncated.
// Characters are counted as runes so multi-byte text is never split.
func Truncate(s string, n int) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + Ellipsis
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// StripCodeFence removes a surrounding ``` fence, with or without a language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ToolHint generates a short hint string for a batch of invocations, e.g. `highlight("the title")`.
func ToolHint(invs []schema.Invocation) string {
	parts := make([]string, 0, len(invs))
	for _, inv := range invs {
		prompt := inv.Prompt()
		if prompt == "" {
			parts = append(parts, inv.FunctionName)
			continue
		}
		if len([]rune(prompt)) > 40 {
			prompt = string([]rune(prompt)[:40]) + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", inv.FunctionName, prompt))
	}
	return strings.Join(parts, ", ")
}
