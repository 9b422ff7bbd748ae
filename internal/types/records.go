// Package types provides type definitions for structured data used throughout the career base system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// RecordKind identifies the kind of career entry a record describes.
type RecordKind string

// Record kinds supported by the knowledge base.
const (
	RecordKindJob       RecordKind = "job"
	RecordKindProject   RecordKind = "project"
	RecordKindEducation RecordKind = "education"
)

// Record is a single career entry (job, project, or education) owned by the
// record store. Records are created by the ingestion pipeline; the data
// quality engine only reads and updates them.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Kind        RecordKind `json:"kind"`
	Title       string     `json:"title"`
	Org         string     `json:"org"`
	Location    *string    `json:"location,omitempty"`
	DateStart   *time.Time `json:"date_start,omitempty"`
	DateEnd     *time.Time `json:"date_end,omitempty"` // nil means current/ongoing
	Skills      []string   `json:"skills"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the record. Rollback snapshots must not share
// slices with the live row.
func (r Record) Clone() Record {
	out := r
	if r.Location != nil {
		loc := *r.Location
		out.Location = &loc
	}
	if r.DateStart != nil {
		t := *r.DateStart
		out.DateStart = &t
	}
	if r.DateEnd != nil {
		t := *r.DateEnd
		out.DateEnd = &t
	}
	if r.Skills != nil {
		out.Skills = append([]string(nil), r.Skills...)
	}
	return out
}

// Current reports whether the record describes an ongoing engagement.
func (r Record) Current() bool {
	return r.DateStart != nil && r.DateEnd == nil
}

// ContentChunk is a text excerpt extracted from an ingested document, with a
// fixed-length embedding vector used for semantic content comparison.
type ContentChunk struct {
	ID        uuid.UUID `json:"id"`
	RecordID  uuid.UUID `json:"record_id"`
	Ordinal   int       `json:"ordinal"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the chunk.
func (c ContentChunk) Clone() ContentChunk {
	out := c
	if c.Embedding != nil {
		out.Embedding = append([]float32(nil), c.Embedding...)
	}
	return out
}
