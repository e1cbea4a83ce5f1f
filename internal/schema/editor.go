package schema

import "context"

// EventKind names a lifecycle notification of a document operation.
type EventKind string

const (
	EventReady       EventKind = "ready"
	EventStreamStart EventKind = "stream_start"
	EventPartial     EventKind = "partial"
	EventStreamEnd   EventKind = "stream_end"
	EventError       EventKind = "error"
)

// Event is one lifecycle notification. Text carries the accumulated output
// for EventPartial and the final output for EventStreamEnd.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Subscriber receives the events of one operation, in emission order.
type Subscriber func(Event)

// Emit calls s with ev when s is non-nil.
func (s Subscriber) Emit(ev Event) {
	if s != nil {
		s(ev)
	}
}

// Editor is the document-editing capability surface the actions drive.
// Every operation takes a free-text instruction and returns a short
// human-readable result.
type Editor interface {
	Find(ctx context.Context, instruction string, sub Subscriber) (string, error)
	FindAll(ctx context.Context, instruction string, sub Subscriber) (string, error)
	Highlight(ctx context.Context, instruction string, sub Subscriber) (string, error)
	Replace(ctx context.Context, instruction string, sub Subscriber) (string, error)
	ReplaceAll(ctx context.Context, instruction string, sub Subscriber) (string, error)
	InsertTrackedChange(ctx context.Context, instruction string, sub Subscriber) (string, error)
	InsertTrackedChanges(ctx context.Context, instruction string, sub Subscriber) (string, error)
	InsertComment(ctx context.Context, instruction string, sub Subscriber) (string, error)
	InsertComments(ctx context.Context, instruction string, sub Subscriber) (string, error)
	Summarize(ctx context.Context, instruction string, sub Subscriber) (string, error)
	InsertContent(ctx context.Context, instruction string, sub Subscriber) (string, error)
}
