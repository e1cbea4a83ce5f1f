// Package document holds the in-memory document the assistant edits: a plain
// text body plus highlights, comments and tracked changes anchored by byte
// span.
package document

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a target text does not occur in the document.
	ErrNotFound = errors.New("not found in document")

	// ErrStale is returned when a tracked change no longer matches the text
	// it was suggested against. The change is kept.
	ErrStale = errors.New("tracked change no longer matches the document")
)

// Span is a half-open byte range [Start, End) of the document text.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

func (s Span) Len() int { return s.End - s.Start }

type Highlight struct {
	ID    string `json:"id" yaml:"id"`
	Span  Span   `json:"span" yaml:"span"`
	Color string `json:"color" yaml:"color"`
}

type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Span      Span      `json:"span" yaml:"span"`
	Text      string    `json:"text" yaml:"text"`
	Author    string    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// TrackedChange is a suggested replacement of Span that has not been applied.
type TrackedChange struct {
	ID        string    `json:"id" yaml:"id"`
	Span      Span      `json:"span" yaml:"span"`
	Original  string    `json:"original" yaml:"original"`
	Suggested string    `json:"suggested" yaml:"suggested"`
	Segments  []Segment `json:"segments" yaml:"segments"`
	Author    string    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Annotations is a snapshot of everything layered over the text.
type Annotations struct {
	Highlights []Highlight     `json:"highlights" yaml:"highlights"`
	Comments   []Comment       `json:"comments" yaml:"comments"`
	Changes    []TrackedChange `json:"changes" yaml:"changes"`
}

// Document is safe for concurrent use.
type Document struct {
	mu     sync.RWMutex
	path   string
	author string
	text   string
	ann    Annotations
	dirty  bool
}

// New returns an unsaved document holding text.
func New(text, author string) *Document {
	return &Document{text: text, author: author}
}

// Path returns the file the document was loaded from, or "".
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Text returns the current body.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Annotations returns a deep-enough copy of the current annotations.
func (d *Document) Annotations() Annotations {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Annotations{
		Highlights: append([]Highlight(nil), d.ann.Highlights...),
		Comments:   append([]Comment(nil), d.ann.Comments...),
		Changes:    append([]TrackedChange(nil), d.ann.Changes...),
	}
}

// Dirty reports whether the document changed since it was last saved.
func (d *Document) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dirty
}

// Find returns the span of the first occurrence of query.
func (d *Document) Find(query string) (Span, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	spans := findSpans(d.text, query, 1)
	if len(spans) == 0 {
		return Span{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return spans[0], nil
}

// FindAll returns the spans of every non-overlapping occurrence of query.
func (d *Document) FindAll(query string) ([]Span, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	spans := findSpans(d.text, query, -1)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return spans, nil
}

// Slice returns the text covered by s.
func (d *Document) Slice(s Span) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s.Start < 0 || s.End > len(d.text) || s.Start > s.End {
		return ""
	}
	return d.text[s.Start:s.End]
}

// Highlight marks the first (or every, when all is set) occurrence of query.
func (d *Document) Highlight(query, color string, all bool) ([]Highlight, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	limit := 1
	if all {
		limit = -1
	}
	spans := findSpans(d.text, query, limit)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	if color == "" {
		color = "yellow"
	}
	out := make([]Highlight, 0, len(spans))
	for _, s := range spans {
		h := Highlight{ID: uuid.NewString(), Span: s, Color: color}
		d.ann.Highlights = append(d.ann.Highlights, h)
		out = append(out, h)
	}
	d.dirty = true
	return out, nil
}

// Replace substitutes the first (or every, when all is set) occurrence of
// find with repl and returns the number of replacements.
func (d *Document) Replace(find, repl string, all bool) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	limit := 1
	if all {
		limit = -1
	}
	spans := findSpans(d.text, find, limit)
	if len(spans) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, find)
	}
	// Apply back to front so earlier spans stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		d.spliceLocked(spans[i], repl)
	}
	d.dirty = true
	return len(spans), nil
}

// SuggestChange records a tracked change replacing the first (or every)
// occurrence of find with repl. The text itself is left untouched until the
// change is accepted.
func (d *Document) SuggestChange(find, repl string, all bool) ([]TrackedChange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	limit := 1
	if all {
		limit = -1
	}
	spans := findSpans(d.text, find, limit)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, find)
	}
	now := time.Now().UTC()
	out := make([]TrackedChange, 0, len(spans))
	for _, s := range spans {
		tc := TrackedChange{
			ID:        uuid.NewString(),
			Span:      s,
			Original:  d.text[s.Start:s.End],
			Suggested: repl,
			Segments:  diffSegments(d.text[s.Start:s.End], repl),
			Author:    d.author,
			CreatedAt: now,
		}
		d.ann.Changes = append(d.ann.Changes, tc)
		out = append(out, tc)
	}
	d.dirty = true
	return out, nil
}

// AcceptChange applies the tracked change with the given id to the text. A
// change whose original text has since been edited is left in place and
// ErrStale is returned.
func (d *Document) AcceptChange(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.changeIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: tracked change %s", ErrNotFound, id)
	}
	tc := d.ann.Changes[i]
	if tc.Span.Start < 0 || tc.Span.End > len(d.text) || tc.Span.Start > tc.Span.End ||
		d.text[tc.Span.Start:tc.Span.End] != tc.Original {
		return fmt.Errorf("%w: %s", ErrStale, id)
	}
	d.ann.Changes = append(d.ann.Changes[:i], d.ann.Changes[i+1:]...)
	d.spliceLocked(tc.Span, tc.Suggested)
	d.dirty = true
	return nil
}

// RejectChange discards the tracked change with the given id.
func (d *Document) RejectChange(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.changeIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: tracked change %s", ErrNotFound, id)
	}
	d.ann.Changes = append(d.ann.Changes[:i], d.ann.Changes[i+1:]...)
	d.dirty = true
	return nil
}

// AddComment anchors a comment on the first occurrence of anchor. An empty
// anchor attaches the comment to the whole document.
func (d *Document) AddComment(anchor, text string) (Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	span := Span{Start: 0, End: len(d.text)}
	if anchor != "" {
		spans := findSpans(d.text, anchor, 1)
		if len(spans) == 0 {
			return Comment{}, fmt.Errorf("%w: %q", ErrNotFound, anchor)
		}
		span = spans[0]
	}
	c := Comment{
		ID:        uuid.NewString(),
		Span:      span,
		Text:      text,
		Author:    d.author,
		CreatedAt: time.Now().UTC(),
	}
	d.ann.Comments = append(d.ann.Comments, c)
	d.dirty = true
	return c, nil
}

// Insert places content after the first occurrence of after, or at the end
// of the document when after is empty. A paragraph break separates it from
// the surrounding text.
func (d *Document) Insert(content, after string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	at := len(d.text)
	if after != "" {
		spans := findSpans(d.text, after, 1)
		if len(spans) == 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, after)
		}
		at = spans[0].End
	}

	insert := content
	if at > 0 && !strings.HasSuffix(d.text[:at], "\n") {
		insert = "\n\n" + insert
	}
	if at < len(d.text) && !strings.HasPrefix(d.text[at:], "\n") {
		insert += "\n\n"
	}
	d.spliceLocked(Span{Start: at, End: at}, insert)
	d.dirty = true
	return nil
}

func (d *Document) changeIndexLocked(id string) int {
	for i, tc := range d.ann.Changes {
		if tc.ID == id {
			return i
		}
	}
	return -1
}

// spliceLocked replaces s with repl and shifts every annotation behind it.
// Annotations overlapping s are stretched to cover the replacement.
func (d *Document) spliceLocked(s Span, repl string) {
	d.text = d.text[:s.Start] + repl + d.text[s.End:]
	delta := len(repl) - s.Len()

	shift := func(a Span) Span {
		switch {
		case a.End <= s.Start:
			return a
		case a.Start >= s.End:
			return Span{Start: a.Start + delta, End: a.End + delta}
		default:
			start := min(a.Start, s.Start)
			end := max(a.End+delta, s.Start+len(repl))
			return Span{Start: start, End: end}
		}
	}
	for i := range d.ann.Highlights {
		d.ann.Highlights[i].Span = shift(d.ann.Highlights[i].Span)
	}
	for i := range d.ann.Comments {
		d.ann.Comments[i].Span = shift(d.ann.Comments[i].Span)
	}
	for i := range d.ann.Changes {
		d.ann.Changes[i].Span = shift(d.ann.Changes[i].Span)
	}
}

// findSpans returns up to limit non-overlapping occurrences of query; a
// negative limit means all of them.
func findSpans(text, query string, limit int) []Span {
	if query == "" {
		return nil
	}
	var out []Span
	for from := 0; from <= len(text); {
		i := strings.Index(text[from:], query)
		if i < 0 {
			break
		}
		start := from + i
		out = append(out, Span{Start: start, End: start + len(query)})
		if limit > 0 && len(out) >= limit {
			break
		}
		from = start + len(query)
	}
	return out
}
