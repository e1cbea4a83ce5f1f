// Package activity holds the session's ordered, append-only log of turns and
// invocations. Records are addressed by id; they are never deleted or
// reordered for the lifetime of the session.
package activity

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrUnknownRecord is returned when an update names an id never issued.
	ErrUnknownRecord = errors.New("unknown log record")

	// ErrTerminal is returned when an update would move a record out of a
	// terminal status.
	ErrTerminal = errors.New("log record already finished")
)

// Record is one status entry for a turn or an invocation.
type Record struct {
	ID            int64     `json:"id"`
	Action        string    `json:"action"`
	Prompt        string    `json:"prompt"`
	Status        string    `json:"status"`
	PartialResult *string   `json:"partialResult"`
	FullResult    *string   `json:"fullResult"`
	Error         *string   `json:"error"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Update describes a change to a record. Empty Status and nil fields are left
// untouched.
type Update struct {
	Status        string
	PartialResult *string
	FullResult    *string
	Error         *string
}

// Str returns a pointer to s, for building Updates.
func Str(s string) *string { return &s }

// Log is the session-scoped record store. All methods are safe for
// concurrent use; subscribers are notified outside the lock, in the order the
// changes were made.
type Log struct {
	mu      sync.Mutex
	nextID  int64
	records []Record
	index   map[int64]int

	subMu   sync.Mutex // serialises notification delivery
	subs    map[int]func(Record)
	nextSub int
}

// NewLog returns an empty Log. The first record gets id 1.
func NewLog() *Log {
	return &Log{
		index: make(map[int64]int),
		subs:  make(map[int]func(Record)),
	}
}

// Append adds a new record with status Starting... and returns it.
func (l *Log) Append(action, prompt string) Record {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	l.mu.Lock()
	l.nextID++
	now := time.Now()
	rec := Record{
		ID:        l.nextID,
		Action:    action,
		Prompt:    prompt,
		Status:    StatusStarting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.index[rec.ID] = len(l.records)
	l.records = append(l.records, rec)
	l.mu.Unlock()

	l.notify(rec)
	return rec
}

// Update applies u to the record with the given id. A record in a terminal
// status only accepts updates that keep the same status.
func (l *Log) Update(id int64, u Update) (Record, error) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	l.mu.Lock()
	i, ok := l.index[id]
	if !ok {
		l.mu.Unlock()
		return Record{}, fmt.Errorf("%w: %d", ErrUnknownRecord, id)
	}
	rec := l.records[i]
	if IsTerminal(rec.Status) && u.Status != "" && u.Status != rec.Status {
		l.mu.Unlock()
		return rec, fmt.Errorf("%w: record %d is %q", ErrTerminal, id, rec.Status)
	}
	if u.Status != "" {
		rec.Status = u.Status
	}
	if u.PartialResult != nil {
		rec.PartialResult = u.PartialResult
	}
	if u.FullResult != nil {
		rec.FullResult = u.FullResult
	}
	if u.Error != nil {
		rec.Error = u.Error
	}
	rec.UpdatedAt = time.Now()
	l.records[i] = rec
	l.mu.Unlock()

	l.notify(rec)
	return rec, nil
}

// Get returns the record with the given id.
func (l *Log) Get(id int64) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[id]
	if !ok {
		return Record{}, false
	}
	return l.records[i], true
}

// Current returns the most recently appended record.
func (l *Log) Current() (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// Records returns a snapshot of all records in append order.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Subscribe registers fn to receive every appended or updated record.
// The returned func removes the subscription.
func (l *Log) Subscribe(fn func(Record)) (cancel func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		delete(l.subs, id)
	}
}

// notify must be called with subMu held.
func (l *Log) notify(rec Record) {
	for _, fn := range l.subs {
		fn(rec)
	}
}
