package agent

import (
	"encoding/json"
	"sync"
	"time"
)

// DecisionLogEntry records one pipeline step of one request
type DecisionLogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	State     State                  `json:"state"`
	Action    string                 `json:"action"`
	Input     string                 `json:"input,omitempty"`
	Output    string                 `json:"output,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// DecisionLog is the append-only record of pipeline decisions. It is the only
// state shared across requests when one agent instance is reused, so appends
// are serialized internally. It is cleared only by an explicit call to Clear.
type DecisionLog struct {
	mu      sync.Mutex
	entries []DecisionLogEntry
}

// NewDecisionLog creates an empty decision log
func NewDecisionLog() *DecisionLog {
	return &DecisionLog{}
}

// Append adds an entry, stamping it with the current time if unset
func (l *DecisionLog) Append(entry DecisionLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all recorded entries in append order
func (l *DecisionLog) Entries() []DecisionLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]DecisionLogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Len returns the number of recorded entries
func (l *DecisionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes all entries
func (l *DecisionLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Export serializes all entries as JSON
func (l *DecisionLog) Export() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return json.MarshalIndent(l.entries, "", "  ")
}
