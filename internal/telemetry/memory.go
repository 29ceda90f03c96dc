package telemetry

// MemoryRecord is one line in a memory.jsonl log. Memory entries are small,
// query-friendly facts and decisions, not large blobs.
type MemoryRecord struct {
	TS      string         `json:"ts"`
	Skill   string         `json:"skill"`
	RunID   string         `json:"run_id"`
	AgentID string         `json:"agent_id"`
	Item    map[string]any `json:"item"`
}

// MemoryLog is an append-only JSONL memory log owned by a single writer.
type MemoryLog struct {
	path string
	meta Meta
}

// NewMemoryLog creates a memory log at path for the given writer identity.
func NewMemoryLog(path string, meta Meta) *MemoryLog {
	return &MemoryLog{path: path, meta: meta}
}

// Append writes one memory record and returns it.
func (l *MemoryLog) Append(item map[string]any) (*MemoryRecord, error) {
	rec := &MemoryRecord{
		TS:      utcTimestamp(),
		Skill:   l.meta.Skill,
		RunID:   l.meta.RunID,
		AgentID: l.meta.AgentID,
		Item:    item,
	}
	if err := appendJSONL(l.path, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// MemoryStore routes memory records to the agent-private log and,
// optionally, the shared log.
type MemoryStore struct {
	agent  *MemoryLog
	shared *MemoryLog
}

// NewMemoryStore wires an agent log and an optional shared log.
func NewMemoryStore(agent, shared *MemoryLog) *MemoryStore {
	return &MemoryStore{agent: agent, shared: shared}
}

// Append writes the item to the logs selected by scope, with the same
// partial-success semantics as EventBus.Emit.
func (s *MemoryStore) Append(scope Scope, item map[string]any) (*MemoryRecord, error) {
	switch scope {
	case ScopeShared:
		if s.shared == nil {
			return nil, ErrSharedNotConfigured
		}
		return s.shared.Append(item)
	case ScopeBoth:
		rec, err := s.agent.Append(item)
		if err != nil {
			return nil, err
		}
		if s.shared != nil {
			_, _ = s.shared.Append(item)
		}
		return rec, nil
	default:
		return s.agent.Append(item)
	}
}
