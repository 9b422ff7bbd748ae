package bulkops

import (
	"context"
	"fmt"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

// RollbackManager replays the compensating snapshots captured during an
// operation. Replay is LIFO: the most recent mutation is reversed first, so
// multi-step items (merge: update primary, re-home chunks, delete duplicate)
// unwind in the opposite order they were applied.
type RollbackManager struct {
	records store.RecordStore
	chunks  store.ChunkStore
	logger  logging.Logger
}

// NewRollbackManager creates a manager over the given stores.
func NewRollbackManager(records store.RecordStore, chunks store.ChunkStore, logger logging.Logger) *RollbackManager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &RollbackManager{records: records, chunks: chunks, logger: logger}
}

// Rollback replays entries in reverse order. It stops at the first failed
// replay and returns a RollbackError; entries already replayed stay replayed.
func (m *RollbackManager) Rollback(ctx context.Context, operationID string, entries []types.RollbackEntry) error {
	for i := len(entries) - 1; i >= 0; i-- {
		if err := m.replay(ctx, entries[i]); err != nil {
			return &cberrors.RollbackError{
				OperationID: operationID,
				Cause:       fmt.Errorf("stopped after %d of %d entries: %w", len(entries)-1-i, len(entries), err),
			}
		}
	}
	m.logger.Info("rollback complete",
		logging.F("operation_id", operationID),
		logging.F("entries", len(entries)))
	return nil
}

func (m *RollbackManager) replay(ctx context.Context, entry types.RollbackEntry) error {
	switch entry.Kind {
	case types.RollbackUpdate:
		if err := m.records.Update(ctx, entry.RecordID, entry.Fields); err != nil {
			return fmt.Errorf("failed to restore record %s: %w", entry.RecordID, err)
		}
		return nil
	case types.RollbackChunkUpdate:
		if err := m.chunks.Update(ctx, entry.ChunkID, entry.Fields); err != nil {
			return fmt.Errorf("failed to restore chunk %s: %w", entry.ChunkID, err)
		}
		return nil
	case types.RollbackDelete:
		return m.replayDelete(ctx, entry)
	default:
		return fmt.Errorf("unknown rollback entry kind %q", entry.Kind)
	}
}

// replayDelete restores a deleted record and its captured chunks. Chunks that
// were re-homed (still exist under another record) are updated back in place;
// chunks that were removed with the record are re-inserted.
func (m *RollbackManager) replayDelete(ctx context.Context, entry types.RollbackEntry) error {
	if entry.Record == nil {
		return fmt.Errorf("delete rollback entry for %s carries no record snapshot", entry.RecordID)
	}
	if err := m.records.Insert(ctx, *entry.Record); err != nil {
		return fmt.Errorf("failed to reinsert record %s: %w", entry.Record.ID, err)
	}
	for _, chunk := range entry.Chunks {
		fields := map[string]any{
			store.FieldRecordID:  chunk.RecordID,
			store.FieldText:      chunk.Text,
			store.FieldEmbedding: chunk.Embedding,
		}
		err := m.chunks.Update(ctx, chunk.ID, fields)
		if cberrors.IsNotFound(err) {
			err = m.chunks.Insert(ctx, chunk)
		}
		if err != nil {
			return fmt.Errorf("failed to restore chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}
