package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/types"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMemoryRecordStore_SelectFilters(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	job := types.Record{ID: uuid.New(), UserID: userA, Kind: types.RecordKindJob, DateStart: date(2020, 1, 1)}
	project := types.Record{ID: uuid.New(), UserID: userA, Kind: types.RecordKindProject, DateStart: date(2021, 1, 1)}
	other := types.Record{ID: uuid.New(), UserID: userB, Kind: types.RecordKindJob}

	s := NewMemoryRecordStore()
	s.Seed(job, project, other)

	all, err := s.Select(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	kind := types.RecordKindJob
	jobs, err := s.Select(context.Background(), Filter{UserID: &userA, Kind: &kind})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)

	byID, err := s.Select(context.Background(), Filter{IDs: []uuid.UUID{project.ID}})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, project.ID, byID[0].ID)
}

func TestMemoryRecordStore_SelectOrdersByDateStart(t *testing.T) {
	early := types.Record{ID: uuid.New(), DateStart: date(2018, 1, 1)}
	late := types.Record{ID: uuid.New(), DateStart: date(2022, 1, 1)}
	undated := types.Record{ID: uuid.New()}

	s := NewMemoryRecordStore()
	s.Seed(late, undated, early)

	out, err := s.Select(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, early.ID, out[0].ID)
	assert.Equal(t, late.ID, out[1].ID)
	assert.Equal(t, undated.ID, out[2].ID) // missing dates sort last
}

func TestMemoryRecordStore_SelectOne(t *testing.T) {
	rec := types.Record{ID: uuid.New(), Title: "Engineer"}
	s := NewMemoryRecordStore()
	s.Seed(rec)

	got, err := s.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Title)

	_, err = s.SelectOne(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, cberrors.IsNotFound(err))
}

func TestMemoryRecordStore_Update(t *testing.T) {
	rec := types.Record{ID: uuid.New(), Title: "Engineer", Skills: []string{"Go"}}
	s := NewMemoryRecordStore()
	s.Seed(rec)

	err := s.Update(context.Background(), rec.ID, map[string]any{
		FieldTitle:  "Senior Engineer",
		FieldSkills: []string{"Go", "SQL"},
	})
	require.NoError(t, err)

	got, err := s.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", got.Title)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.False(t, got.UpdatedAt.IsZero())

	err = s.Update(context.Background(), uuid.New(), map[string]any{FieldTitle: "x"})
	assert.True(t, cberrors.IsNotFound(err))

	err = s.Update(context.Background(), rec.ID, map[string]any{"nope": 1})
	assert.Error(t, err)
}

func TestMemoryRecordStore_UpdateNilDates(t *testing.T) {
	rec := types.Record{ID: uuid.New(), DateStart: date(2020, 1, 1), DateEnd: date(2021, 1, 1)}
	s := NewMemoryRecordStore()
	s.Seed(rec)

	err := s.Update(context.Background(), rec.ID, map[string]any{
		FieldDateStart: date(2019, 1, 1),
		FieldDateEnd:   nil, // now ongoing
	})
	require.NoError(t, err)

	got, err := s.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateStart)
	assert.True(t, got.DateStart.Equal(*date(2019, 1, 1)))
	assert.Nil(t, got.DateEnd)
}

func TestMemoryRecordStore_DeleteAndInsert(t *testing.T) {
	rec := types.Record{ID: uuid.New(), Title: "Engineer"}
	s := NewMemoryRecordStore()
	s.Seed(rec)

	require.NoError(t, s.Delete(context.Background(), []uuid.UUID{rec.ID, uuid.New()}))
	_, err := s.SelectOne(context.Background(), rec.ID)
	assert.True(t, cberrors.IsNotFound(err))

	require.NoError(t, s.Insert(context.Background(), rec))
	got, err := s.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Title)

	err = s.Insert(context.Background(), rec)
	assert.True(t, cberrors.IsStore(err))
}

func TestMemoryRecordStore_SelectReturnsClones(t *testing.T) {
	rec := types.Record{ID: uuid.New(), Skills: []string{"Go"}}
	s := NewMemoryRecordStore()
	s.Seed(rec)

	out, err := s.Select(context.Background(), Filter{})
	require.NoError(t, err)
	out[0].Skills[0] = "mutated"

	got, err := s.SelectOne(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Skills)
}

func TestMemoryChunkStore(t *testing.T) {
	recID := uuid.New()
	first := types.ContentChunk{ID: uuid.New(), RecordID: recID, Ordinal: 0, Text: "alpha"}
	second := types.ContentChunk{ID: uuid.New(), RecordID: recID, Ordinal: 1, Text: "beta"}
	foreign := types.ContentChunk{ID: uuid.New(), RecordID: uuid.New(), Ordinal: 0, Text: "other"}

	s := NewMemoryChunkStore()
	s.Seed(second, foreign, first)

	chunks, err := s.SelectByRecordID(context.Background(), recID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha", chunks[0].Text)
	assert.Equal(t, "beta", chunks[1].Text)

	newOwner := uuid.New()
	err = s.Update(context.Background(), first.ID, map[string]any{
		FieldRecordID:  newOwner,
		FieldEmbedding: []float32{1, 2},
	})
	require.NoError(t, err)

	moved, err := s.SelectByRecordID(context.Background(), newOwner)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, []float32{1, 2}, moved[0].Embedding)

	err = s.Update(context.Background(), uuid.New(), map[string]any{FieldText: "x"})
	assert.True(t, cberrors.IsNotFound(err))
}
