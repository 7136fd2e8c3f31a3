package notify

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"branchflow.dev/branchflow/internal/output"
)

// Notifier forwards promotion events to an external consumer. The engine
// emits exactly one event per decision point, in order, before the action
// returns; notifiers must not batch or deduplicate.
type Notifier interface {
	Emit(event Event)
}

// SplogNotifier renders events as human-readable console output.
type SplogNotifier struct {
	splog *output.Splog
}

// NewSplogNotifier creates a notifier writing to the given splog.
func NewSplogNotifier(splog *output.Splog) *SplogNotifier {
	return &SplogNotifier{splog: splog}
}

// Emit writes the event's summary, as a warning for outcomes that need a
// human and as plain info otherwise.
func (n *SplogNotifier) Emit(event Event) {
	switch event.Kind() {
	case KindTagReminder, KindConflictDetected, KindPropagationFailed:
		n.splog.Warn("%s", event.Summary())
	default:
		n.splog.Info("%s", event.Summary())
	}
}

// envelope is the JSONL wire form of an event.
type envelope struct {
	Kind    EventKind `json:"kind"`
	Time    string    `json:"time"`
	Payload Event     `json:"payload"`
}

// EventLog appends every event as one JSON line to a rotating logfile, for
// external systems (build, deploy, messaging) to consume.
type EventLog struct {
	writer io.Writer
	now    func() time.Time
}

// NewEventLog creates an event log backed by a rotating file at path.
func NewEventLog(path string) *EventLog {
	return &EventLog{
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    5, // megabytes
			MaxBackups: 4,
			MaxAge:     90, // days
		},
		now: time.Now,
	}
}

// NewEventLogWriter creates an event log over an arbitrary writer.
func NewEventLogWriter(w io.Writer) *EventLog {
	return &EventLog{writer: w, now: time.Now}
}

// Emit appends the event as a JSON line. Serialization failures are
// swallowed: the event log is an observer, never a reason to fail a
// promotion.
func (l *EventLog) Emit(event Event) {
	line, err := json.Marshal(envelope{
		Kind:    event.Kind(),
		Time:    l.now().UTC().Format(time.RFC3339),
		Payload: event,
	})
	if err != nil {
		return
	}
	line = append(line, '\n')
	_, _ = l.writer.Write(line)
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

// Emit forwards the event to every notifier.
func (m Multi) Emit(event Event) {
	for _, n := range m {
		n.Emit(event)
	}
}
