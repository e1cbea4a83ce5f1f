package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindAll(t *testing.T) {
	d := New("the cat and the hat", "tester")
	spans, err := d.FindAll("the")
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 2 || spans[1].Start != 12 {
		t.Fatalf("unexpected spans: %+v", spans)
	}
	if _, err := d.Find("dog"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplace_ShiftsAnnotations(t *testing.T) {
	d := New("alpha beta gamma", "tester")
	if _, err := d.Highlight("gamma", "", false); err != nil {
		t.Fatal(err)
	}
	n, err := d.Replace("alpha", "A", false)
	if err != nil || n != 1 {
		t.Fatalf("replace: n=%d err=%v", n, err)
	}
	if d.Text() != "A beta gamma" {
		t.Fatalf("text: %q", d.Text())
	}
	h := d.Annotations().Highlights[0]
	if d.Slice(h.Span) != "gamma" {
		t.Errorf("highlight drifted to %q", d.Slice(h.Span))
	}
	if !d.Dirty() {
		t.Error("expected dirty after replace")
	}
}

func TestReplaceAll(t *testing.T) {
	d := New("a-b-a-b", "")
	n, err := d.Replace("a", "xyz", true)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || d.Text() != "xyz-b-xyz-b" {
		t.Errorf("n=%d text=%q", n, d.Text())
	}
}

func TestSuggestChange_AcceptAndReject(t *testing.T) {
	d := New("The quick brown fox.", "tester")
	changes, err := d.SuggestChange("quick brown", "slow red", false)
	if err != nil {
		t.Fatal(err)
	}
	if d.Text() != "The quick brown fox." {
		t.Fatal("suggesting must not modify the text")
	}
	tc := changes[0]
	if tc.Original != "quick brown" || tc.Suggested != "slow red" || len(tc.Segments) == 0 {
		t.Fatalf("unexpected change: %+v", tc)
	}

	if err := d.AcceptChange(tc.ID); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "The slow red fox." {
		t.Errorf("after accept: %q", d.Text())
	}

	changes, _ = d.SuggestChange("fox", "dog", false)
	if err := d.RejectChange(changes[0].ID); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "The slow red fox." || len(d.Annotations().Changes) != 0 {
		t.Errorf("reject should leave text alone and drop the change")
	}
}

func TestAcceptChange_StaleKeepsSuggestion(t *testing.T) {
	d := New("Hello brave world.", "tester")
	changes, err := d.SuggestChange("brave world", "new world", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Replace("brave", "bold", false); err != nil {
		t.Fatal(err)
	}

	err = d.AcceptChange(changes[0].ID)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if d.Text() != "Hello bold world." {
		t.Errorf("stale accept must not modify the text, got %q", d.Text())
	}
	left := d.Annotations().Changes
	if len(left) != 1 || left[0].ID != changes[0].ID {
		t.Fatalf("stale change should be kept, got %+v", left)
	}
	if err := d.RejectChange(changes[0].ID); err != nil {
		t.Errorf("stale change should still be rejectable: %v", err)
	}
}

func TestAcceptChange_UnknownID(t *testing.T) {
	d := New("text", "tester")
	if err := d.AcceptChange("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	d := New("Intro. Body.", "tester")
	c, err := d.AddComment("Body.", "expand this")
	if err != nil {
		t.Fatal(err)
	}
	if d.Slice(c.Span) != "Body." || c.Author != "tester" {
		t.Errorf("unexpected comment: %+v", c)
	}
	if _, err := d.AddComment("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInsert(t *testing.T) {
	d := New("First paragraph.", "")
	if err := d.Insert("Second paragraph.", ""); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("append: %q", d.Text())
	}

	d = New("A. C.", "")
	if err := d.Insert("B.", "A."); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "A.\n\nB.\n\n C." {
		t.Errorf("insert after: %q", d.Text())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Highlight("world", "green", false); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddComment("hello", "greeting"); err != nil {
		t.Fatal(err)
	}
	if err := d.Save(); err != nil {
		t.Fatal(err)
	}
	if d.Dirty() {
		t.Error("expected clean after save")
	}

	again, err := Load(path, "tester")
	if err != nil {
		t.Fatal(err)
	}
	ann := again.Annotations()
	if len(ann.Highlights) != 1 || ann.Highlights[0].Color != "green" {
		t.Errorf("highlights not restored: %+v", ann.Highlights)
	}
	if len(ann.Comments) != 1 || again.Slice(ann.Comments[0].Span) != "hello" {
		t.Errorf("comments not restored: %+v", ann.Comments)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "new.txt"), "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Text() != "" {
		t.Errorf("expected empty document")
	}
}
