// Package orchestration implements agent-to-agent delegation: parsing
// @mentions, classifying tasks, dispatching to the target persona's
// backend, and auditing every attempt in an append-only log.
package orchestration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"visionboard/internal/types"
)

// Log is the process-lifetime delegation audit trail. Entries are
// append-only: ids and timestamps are assigned at append and rows are
// never edited afterward.
type Log struct {
	mu      sync.RWMutex
	entries []types.OrchestrationLogEntry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records one entry, assigning its id and timestamp, and returns
// the completed row.
func (l *Log) Append(sourceAgent, targetAgent, task string, status types.LogStatus, details string) types.OrchestrationLogEntry {
	entry := types.OrchestrationLogEntry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		SourceAgent: sourceAgent,
		TargetAgent: targetAgent,
		Task:        task,
		Status:      status,
		Details:     details,
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

// Entries returns a snapshot of the log in append order.
func (l *Log) Entries() []types.OrchestrationLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.OrchestrationLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
