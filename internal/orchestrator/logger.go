package orchestrator

import (
	"log/slog"

	"github.com/docwright/docwright/internal/activity"
	"github.com/docwright/docwright/internal/schema"
	"github.com/docwright/docwright/internal/shared/llmutils"
)

// ResultLimit is the number of characters kept of interim and final results.
const ResultLimit = 100

// TruncateResult shortens s for display in a log record.
func TruncateResult(s string) string {
	return llmutils.Truncate(s, ResultLimit)
}

// Logger owns every status transition the orchestrator makes on the
// session log. Records are always addressed by id.
type Logger struct {
	log *activity.Log
}

// NewLogger returns a Logger writing to log.
func NewLogger(log *activity.Log) *Logger {
	return &Logger{log: log}
}

// Start appends a record for action and returns its id.
func (l *Logger) Start(action, prompt string) int64 {
	return l.log.Append(action, prompt).ID
}

// Status moves record id to status.
func (l *Logger) Status(id int64, status string) {
	l.apply(id, activity.Update{Status: status})
}

// Finish moves record id to a terminal status with a truncated result.
func (l *Logger) Finish(id int64, status, result string) {
	l.apply(id, activity.Update{Status: status, FullResult: activity.Str(TruncateResult(result))})
}

// Fail moves record id to status and attaches err's message.
func (l *Logger) Fail(id int64, status string, err error) {
	l.apply(id, activity.Update{Status: status, Error: activity.Str(err.Error())})
}

// FailCurrent applies Fail to record id, or to the current record when id is
// not in the log.
func (l *Logger) FailCurrent(id int64, status string, err error) {
	if _, ok := l.log.Get(id); !ok {
		cur, ok := l.log.Current()
		if !ok {
			slog.Warn("orchestrator: no log record to attach failure to", "err", err)
			return
		}
		id = cur.ID
	}
	l.Fail(id, status, err)
}

// Subscriber maps the lifecycle events of one operation onto record id.
func (l *Logger) Subscriber(id int64) schema.Subscriber {
	return func(ev schema.Event) {
		switch ev.Kind {
		case schema.EventReady:
			l.apply(id, activity.Update{Status: activity.StatusProcessing})
		case schema.EventStreamStart:
			l.apply(id, activity.Update{Status: activity.StatusStreaming})
		case schema.EventPartial:
			l.apply(id, activity.Update{Status: activity.StatusStreaming, PartialResult: activity.Str(TruncateResult(ev.Text))})
		case schema.EventStreamEnd:
			l.apply(id, activity.Update{FullResult: activity.Str(TruncateResult(ev.Text))})
		case schema.EventError:
			if ev.Err != nil {
				l.apply(id, activity.Update{Error: activity.Str(ev.Err.Error())})
			}
		}
	}
}

func (l *Logger) apply(id int64, u activity.Update) {
	if _, err := l.log.Update(id, u); err != nil {
		slog.Warn("orchestrator: log update rejected", "id", id, "status", u.Status, "err", err)
	}
}
