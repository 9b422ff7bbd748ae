package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

// ChunkStore implements store.ChunkStore on PostgreSQL.
type ChunkStore struct {
	pool *pgxpool.Pool
}

var chunkUpdateColumns = map[string]string{
	store.FieldRecordID:  "record_id",
	store.FieldText:      "text",
	store.FieldEmbedding: "embedding",
}

// SelectByRecordID retrieves a record's chunks ordered by ordinal.
func (s *ChunkStore) SelectByRecordID(ctx context.Context, recordID uuid.UUID) ([]types.ContentChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, record_id, ordinal, text, embedding, created_at
		 FROM content_chunks WHERE record_id = $1 ORDER BY ordinal ASC`,
		recordID,
	)
	if err != nil {
		return nil, &cberrors.StoreError{Op: "select chunks", Cause: err}
	}
	defer rows.Close()

	var chunks []types.ContentChunk
	for rows.Next() {
		var c types.ContentChunk
		if err := rows.Scan(&c.ID, &c.RecordID, &c.Ordinal, &c.Text, &c.Embedding, &c.CreatedAt); err != nil {
			return nil, &cberrors.StoreError{Op: "scan chunk", Cause: err}
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Update applies the given field values to a chunk.
func (s *ChunkStore) Update(ctx context.Context, chunkID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields))
	args := []any{}
	argNum := 1

	for key, value := range fields {
		column, ok := chunkUpdateColumns[key]
		if !ok {
			return &cberrors.StoreError{Op: "update chunk", Cause: fmt.Errorf("unknown field %q", key)}
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	query := fmt.Sprintf("UPDATE content_chunks SET %s WHERE id = $%d", strings.Join(sets, ", "), argNum)
	args = append(args, chunkID)

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return &cberrors.StoreError{Op: "update chunk", Cause: err}
	}
	if result.RowsAffected() == 0 {
		return cberrors.NewNotFound("chunk", chunkID.String())
	}
	return nil
}

// Insert adds a chunk, used by rollback to restore deleted chunks.
func (s *ChunkStore) Insert(ctx context.Context, chunk types.ContentChunk) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO content_chunks (id, record_id, ordinal, text, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		chunk.ID, chunk.RecordID, chunk.Ordinal, chunk.Text, chunk.Embedding, chunk.CreatedAt,
	)
	if err != nil {
		return &cberrors.StoreError{Op: "insert chunk", Cause: err}
	}
	return nil
}
