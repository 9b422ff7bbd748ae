package bulkops

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

func TestRollback_ReplaysInReverseOrder(t *testing.T) {
	records := store.NewMemoryRecordStore()
	rec := seedJob(records, "Engineer", "Rust")
	manager := NewRollbackManager(records, store.NewMemoryChunkStore(), nil)

	// Entries captured in apply order; the earliest snapshot must win.
	entries := []types.RollbackEntry{
		{Kind: types.RollbackUpdate, RecordID: rec.ID, Fields: map[string]any{store.FieldSkills: []string{"first"}}},
		{Kind: types.RollbackUpdate, RecordID: rec.ID, Fields: map[string]any{store.FieldSkills: []string{"second"}}},
	}
	require.NoError(t, manager.Rollback(context.Background(), "op-1", entries))

	got, err := records.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, got.Skills)
}

func TestRollback_RestoresDeletedRecordAndChunks(t *testing.T) {
	records := store.NewMemoryRecordStore()
	chunks := store.NewMemoryChunkStore()
	manager := NewRollbackManager(records, chunks, nil)

	deleted := types.Record{
		ID: uuid.New(), UserID: uuid.New(), Kind: types.RecordKindJob,
		Title: "Engineer", Org: "Acme", Skills: []string{"Go"},
	}
	rehomed := types.ContentChunk{
		ID: uuid.New(), RecordID: deleted.ID, Ordinal: 0,
		Text: "still exists", Embedding: []float32{1, 2},
	}
	removed := types.ContentChunk{
		ID: uuid.New(), RecordID: deleted.ID, Ordinal: 1,
		Text: "was deleted with the record",
	}
	// The re-homed chunk survives under another record id; the other is gone.
	survivor := rehomed
	survivor.RecordID = uuid.New()
	chunks.Seed(survivor)

	entries := []types.RollbackEntry{{
		Kind:     types.RollbackDelete,
		RecordID: deleted.ID,
		Record:   &deleted,
		Chunks:   []types.ContentChunk{rehomed, removed},
	}}
	require.NoError(t, manager.Rollback(context.Background(), "op-1", entries))

	got, err := records.SelectOne(context.Background(), deleted.ID)
	require.NoError(t, err)
	assert.Equal(t, deleted.Title, got.Title)

	owned, err := chunks.SelectByRecordID(context.Background(), deleted.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, rehomed.ID, owned[0].ID)
	assert.Equal(t, rehomed.Embedding, owned[0].Embedding)
	assert.Equal(t, removed.ID, owned[1].ID)
}

func TestRollback_StopsAtFirstFailure(t *testing.T) {
	records := store.NewMemoryRecordStore()
	rec := seedJob(records, "Engineer", "Rust")
	manager := NewRollbackManager(records, store.NewMemoryChunkStore(), nil)

	entries := []types.RollbackEntry{
		{Kind: types.RollbackUpdate, RecordID: rec.ID, Fields: map[string]any{store.FieldSkills: []string{"untouched"}}},
		{Kind: types.RollbackUpdate, RecordID: uuid.New(), Fields: map[string]any{store.FieldSkills: []string{"x"}}},
		{Kind: types.RollbackUpdate, RecordID: rec.ID, Fields: map[string]any{store.FieldSkills: []string{"replayed"}}},
	}
	err := manager.Rollback(context.Background(), "op-1", entries)
	require.Error(t, err)
	assert.True(t, cberrors.IsRollback(err))

	// The last entry replayed before the failure; the first never ran.
	got, err := records.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"replayed"}, got.Skills)
}

func TestRollback_UnknownEntryKind(t *testing.T) {
	manager := NewRollbackManager(store.NewMemoryRecordStore(), store.NewMemoryChunkStore(), nil)
	err := manager.Rollback(context.Background(), "op-1", []types.RollbackEntry{{Kind: "truncate"}})
	require.Error(t, err)
	assert.True(t, cberrors.IsRollback(err))
}

func TestRollback_NoEntries(t *testing.T) {
	manager := NewRollbackManager(store.NewMemoryRecordStore(), store.NewMemoryChunkStore(), nil)
	assert.NoError(t, manager.Rollback(context.Background(), "op-1", nil))
}
