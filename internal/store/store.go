// Package store defines the record and content-chunk store interfaces the
// data quality engine consumes, plus an in-memory implementation used by
// tests and dry runs. The PostgreSQL implementation lives in internal/db.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/careerbase/internal/types"
)

// Filter narrows a record selection. Zero-value fields are ignored.
type Filter struct {
	UserID *uuid.UUID
	Kind   *types.RecordKind
	IDs    []uuid.UUID
}

// RecordStore is the generic CRUD interface over career records. The engine
// treats it as non-transactional: rollback is compensating replay, not a
// database transaction.
type RecordStore interface {
	// Select returns the records matching the filter.
	Select(ctx context.Context, f Filter) ([]types.Record, error)
	// SelectOne returns a single record or a NotFoundError.
	SelectOne(ctx context.Context, id uuid.UUID) (*types.Record, error)
	// Update applies the given field values to a record.
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// Delete removes the given records.
	Delete(ctx context.Context, ids []uuid.UUID) error
	// Insert adds a record, used by rollback to restore deleted rows.
	Insert(ctx context.Context, rec types.Record) error
}

// ChunkStore is the CRUD interface over content chunks.
type ChunkStore interface {
	// SelectByRecordID returns a record's chunks ordered by ordinal.
	SelectByRecordID(ctx context.Context, recordID uuid.UUID) ([]types.ContentChunk, error)
	// Update applies the given field values to a chunk.
	Update(ctx context.Context, chunkID uuid.UUID, fields map[string]any) error
	// Insert adds a chunk, used by rollback to restore deleted chunks.
	Insert(ctx context.Context, chunk types.ContentChunk) error
}

// Record field keys accepted by RecordStore.Update.
const (
	FieldTitle       = "title"
	FieldOrg         = "org"
	FieldLocation    = "location"
	FieldDateStart   = "date_start"
	FieldDateEnd     = "date_end"
	FieldSkills      = "skills"
	FieldDescription = "description"
)

// Chunk field keys accepted by ChunkStore.Update.
const (
	FieldRecordID  = "record_id"
	FieldEmbedding = "embedding"
	FieldText      = "text"
)
