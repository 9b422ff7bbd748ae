package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/types"
)

// MemoryRecordStore is an in-process RecordStore for tests and dry runs.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]types.Record
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[uuid.UUID]types.Record)}
}

// Seed inserts records without error checking, for test setup.
func (m *MemoryRecordStore) Seed(recs ...types.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.records[r.ID] = r.Clone()
	}
}

// Select returns the records matching the filter, ordered by DateStart then ID
// for determinism.
func (m *MemoryRecordStore) Select(_ context.Context, f Filter) ([]types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wantID := make(map[uuid.UUID]struct{}, len(f.IDs))
	for _, id := range f.IDs {
		wantID[id] = struct{}{}
	}

	var out []types.Record
	for _, r := range m.records {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.Kind != nil && r.Kind != *f.Kind {
			continue
		}
		if len(wantID) > 0 {
			if _, ok := wantID[r.ID]; !ok {
				continue
			}
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DateStart == nil && b.DateStart == nil:
			return a.ID.String() < b.ID.String()
		case a.DateStart == nil:
			return false
		case b.DateStart == nil:
			return true
		case !a.DateStart.Equal(*b.DateStart):
			return a.DateStart.Before(*b.DateStart)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// SelectOne returns a single record or a NotFoundError.
func (m *MemoryRecordStore) SelectOne(_ context.Context, id uuid.UUID) (*types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, cberrors.NewNotFound("record", id.String())
	}
	clone := r.Clone()
	return &clone, nil
}

// Update applies the given field values to a record.
func (m *MemoryRecordStore) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return cberrors.NewNotFound("record", id.String())
	}
	if err := ApplyRecordFields(&r, fields); err != nil {
		return err
	}
	m.records[id] = r
	return nil
}

// Delete removes the given records. Missing ids are ignored, matching SQL
// DELETE semantics.
func (m *MemoryRecordStore) Delete(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

// Insert adds a record. Inserting an existing id is an error.
func (m *MemoryRecordStore) Insert(_ context.Context, rec types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; ok {
		return &cberrors.StoreError{Op: "insert record " + rec.ID.String(), Cause: errDuplicateKey}
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

// MemoryChunkStore is an in-process ChunkStore for tests and dry runs.
type MemoryChunkStore struct {
	mu     sync.RWMutex
	chunks map[uuid.UUID]types.ContentChunk
}

// NewMemoryChunkStore creates an empty in-memory chunk store.
func NewMemoryChunkStore() *MemoryChunkStore {
	return &MemoryChunkStore{chunks: make(map[uuid.UUID]types.ContentChunk)}
}

// Seed inserts chunks without error checking, for test setup.
func (m *MemoryChunkStore) Seed(chunks ...types.ContentChunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c.Clone()
	}
}

// SelectByRecordID returns a record's chunks ordered by ordinal.
func (m *MemoryChunkStore) SelectByRecordID(_ context.Context, recordID uuid.UUID) ([]types.ContentChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.ContentChunk
	for _, c := range m.chunks {
		if c.RecordID == recordID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ordinal != out[j].Ordinal {
			return out[i].Ordinal < out[j].Ordinal
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Update applies the given field values to a chunk.
func (m *MemoryChunkStore) Update(_ context.Context, chunkID uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[chunkID]
	if !ok {
		return cberrors.NewNotFound("chunk", chunkID.String())
	}
	if err := ApplyChunkFields(&c, fields); err != nil {
		return err
	}
	m.chunks[chunkID] = c
	return nil
}

// Insert adds a chunk. Inserting an existing id is an error.
func (m *MemoryChunkStore) Insert(_ context.Context, chunk types.ContentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chunks[chunk.ID]; ok {
		return &cberrors.StoreError{Op: "insert chunk " + chunk.ID.String(), Cause: errDuplicateKey}
	}
	m.chunks[chunk.ID] = chunk.Clone()
	return nil
}
