package telemetry

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// EventRecord is one line in an events.jsonl log. Ordering within one file
// is the append order; ordering across files is unspecified, so consumers
// correlate by timestamp and run id instead.
type EventRecord struct {
	TS      string         `json:"ts"`
	ID      string         `json:"id"`
	Level   string         `json:"level"`
	Event   string         `json:"event"`
	Message string         `json:"message"`
	Skill   string         `json:"skill"`
	RunID   string         `json:"run_id"`
	AgentID string         `json:"agent_id"`
	PID     int            `json:"pid"`
	Data    map[string]any `json:"data,omitempty"`
}

// Event is the caller-supplied portion of an event. Level defaults to INFO.
type Event struct {
	Name    string
	Message string
	Level   string
	Data    map[string]any
}

// EventLog is an append-only JSONL event log owned by a single writer.
type EventLog struct {
	path string
	meta Meta
}

// NewEventLog creates an event log at path for the given writer identity.
func NewEventLog(path string, meta Meta) *EventLog {
	return &EventLog{path: path, meta: meta}
}

// Path returns the log file location.
func (l *EventLog) Path() string { return l.path }

// Emit appends one event record and returns it.
func (l *EventLog) Emit(ev Event) (*EventRecord, error) {
	level := strings.ToUpper(ev.Level)
	if level == "" {
		level = "INFO"
	}
	rec := &EventRecord{
		TS:      utcTimestamp(),
		ID:      strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Level:   level,
		Event:   ev.Name,
		Message: ev.Message,
		Skill:   l.meta.Skill,
		RunID:   l.meta.RunID,
		AgentID: l.meta.AgentID,
		PID:     os.Getpid(),
		Data:    ev.Data,
	}
	if err := appendJSONL(l.path, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EventBus routes events to the agent-private log and, optionally, the
// shared log. The shared log is best reserved for the coordinator agent.
type EventBus struct {
	agent  *EventLog
	shared *EventLog
}

// NewEventBus wires an agent log and an optional shared log (nil if this
// run has no shared scope).
func NewEventBus(agent, shared *EventLog) *EventBus {
	return &EventBus{agent: agent, shared: shared}
}

// Emit writes the event to the logs selected by scope. For ScopeBoth the
// two writes are independent: a shared-log failure after a successful
// agent-log write is swallowed, because telemetry must never abort the run
// it describes.
func (b *EventBus) Emit(scope Scope, ev Event) (*EventRecord, error) {
	switch scope {
	case ScopeShared:
		if b.shared == nil {
			return nil, ErrSharedNotConfigured
		}
		return b.shared.Emit(ev)
	case ScopeBoth:
		rec, err := b.agent.Emit(ev)
		if err != nil {
			return nil, err
		}
		if b.shared != nil {
			_, _ = b.shared.Emit(ev)
		}
		return rec, nil
	default:
		return b.agent.Emit(ev)
	}
}
