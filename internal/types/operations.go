package types

import (
	"time"

	"github.com/google/uuid"
)

// OperationType identifies a bulk corrective operation.
type OperationType string

// Bulk operation types.
const (
	OpUpdateSkills    OperationType = "update-skills"
	OpFixDates        OperationType = "fix-dates"
	OpMergeDuplicates OperationType = "merge-duplicates"
)

// Valid reports whether t names a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case OpUpdateSkills, OpFixDates, OpMergeDuplicates:
		return true
	}
	return false
}

// OperationStatus is the lifecycle state of a bulk operation. Transitions are
// monotonic along started -> running -> {completed|failed|cancelled}, and
// failed/cancelled may be followed by exactly one rollback attempt.
type OperationStatus string

// Operation lifecycle states.
const (
	StatusStarted        OperationStatus = "started"
	StatusRunning        OperationStatus = "running"
	StatusCompleted      OperationStatus = "completed"
	StatusFailed         OperationStatus = "failed"
	StatusCancelled      OperationStatus = "cancelled"
	StatusRolledBack     OperationStatus = "rolled_back"
	StatusRollbackFailed OperationStatus = "rollback_failed"
)

// Terminal reports whether no further status transition can occur.
// failed and cancelled are not terminal: a single rollback attempt follows.
func (s OperationStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRolledBack, StatusRollbackFailed:
		return true
	}
	return false
}

// ItemError records a per-item failure with the item's identifying context.
type ItemError struct {
	RecordID string `json:"record_id"`
	Message  string `json:"message"`
}

// Change records one applied field change for audit.
type Change struct {
	RecordID uuid.UUID `json:"record_id"`
	Field    string    `json:"field"`
	Before   any       `json:"before,omitempty"`
	After    any       `json:"after,omitempty"`
}

// OperationResults accumulates per-item outcomes. Per-item failures are
// isolated: Failed counts them, Errors describes them, and processing
// continues with the next item.
type OperationResults struct {
	Processed  int         `json:"processed"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors"`
	Changes    []Change    `json:"changes"`
}

// RollbackKind distinguishes how a rollback entry is reversed.
type RollbackKind string

// Rollback entry kinds.
const (
	// RollbackUpdate re-applies captured prior field values to a record.
	RollbackUpdate RollbackKind = "update"
	// RollbackDelete re-inserts a captured row and its captured chunks.
	RollbackDelete RollbackKind = "delete"
	// RollbackChunkUpdate re-applies captured prior field values to a chunk.
	RollbackChunkUpdate RollbackKind = "chunk_update"
)

// RollbackEntry is a pre-mutation snapshot captured before each write.
// Entries are replayed in reverse (LIFO) order.
type RollbackEntry struct {
	Kind     RollbackKind   `json:"kind"`
	RecordID uuid.UUID      `json:"record_id,omitempty"`
	ChunkID  uuid.UUID      `json:"chunk_id,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	Record   *Record        `json:"record,omitempty"`
	Chunks   []ContentChunk `json:"chunks,omitempty"`
}

// Operation is the unit of bulk work tracked by the engine. It is created at
// execute time, mutated only by the engine goroutine processing it, and
// evicted from the registry a bounded window after reaching a terminal state.
type Operation struct {
	ID           string           `json:"id"`
	Type         OperationType    `json:"type"`
	Status       OperationStatus  `json:"status"`
	Progress     int              `json:"progress"`
	Results      OperationResults `json:"results"`
	RollbackData []RollbackEntry  `json:"-"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      *time.Time       `json:"end_time,omitempty"`
}

// Snapshot returns a copy safe to hand to concurrent status pollers. The
// rollback stack is engine-internal and excluded.
func (o *Operation) Snapshot() Operation {
	out := *o
	out.RollbackData = nil
	out.Results.Errors = append([]ItemError(nil), o.Results.Errors...)
	out.Results.Changes = append([]Change(nil), o.Results.Changes...)
	if o.EndTime != nil {
		t := *o.EndTime
		out.EndTime = &t
	}
	return out
}

// Duration returns the elapsed wall-clock time of the operation.
func (o *Operation) Duration() time.Duration {
	if o.EndTime == nil {
		return time.Since(o.StartTime)
	}
	return o.EndTime.Sub(o.StartTime)
}
