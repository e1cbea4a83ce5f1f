package llmutils

import (
	"strings"
	"testing"

	"github.com/docwright/docwright/internal/schema"
)

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", 100)
	if got := Truncate(short, 100); got != short {
		t.Errorf("100 chars should be unchanged, got len %d", len(got))
	}

	long := strings.Repeat("b", 150)
	got := Truncate(long, 100)
	if got != strings.Repeat("b", 100)+"..." {
		t.Errorf("unexpected truncation: %q", got)
	}
	if len([]rune(got)) != 103 {
		t.Errorf("expected 103 runes, got %d", len([]rune(got)))
	}

	if Truncate("", 100) != "" {
		t.Error("empty input should stay empty")
	}
}

func TestTruncate_Multibyte(t *testing.T) {
	s := strings.Repeat("é", 101)
	got := Truncate(s, 100)
	if got != strings.Repeat("é", 100)+"..." {
		t.Errorf("multibyte truncation split a rune: %q", got)
	}
}

func TestTruncate_Idempotent(t *testing.T) {
	s := "Summarised content"
	if Truncate(Truncate(s, 100), 100) != s {
		t.Error("truncating a short string twice changed it")
	}
}

func TestStripThink(t *testing.T) {
	got := StripThink("<think>plan it</think>  The answer")
	if got != "The answer" {
		t.Errorf("got %q", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	got := StripCodeFence("```json\n{\"a\":1}\n```")
	if got != `{"a":1}` {
		t.Errorf("got %q", got)
	}
	if StripCodeFence(`{"a":1}`) != `{"a":1}` {
		t.Error("unfenced input should be unchanged")
	}
}

func TestToolHint(t *testing.T) {
	invs := []schema.Invocation{
		schema.NewInvocation("1", "highlight", `{"prompt":"the title"}`),
		schema.NewInvocation("2", "summarize", `{}`),
	}
	got := ToolHint(invs)
	if got != `highlight("the title"), summarize` {
		t.Errorf("got %q", got)
	}
}
