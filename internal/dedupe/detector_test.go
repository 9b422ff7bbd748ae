package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerbase/internal/similarity"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newDetector(chunks store.ChunkStore) *Detector {
	return New(Config{
		Scorer: similarity.New(similarity.Config{}),
		Chunks: chunks,
	})
}

func jobRecord(title, org string, skills ...string) types.Record {
	return types.Record{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Kind:      types.RecordKindJob,
		Title:     title,
		Org:       org,
		DateStart: date(2020, 1, 1),
		DateEnd:   date(2022, 1, 1),
		Skills:    skills,
	}
}

func TestFindDuplicates_EmptyInput(t *testing.T) {
	report, err := newDetector(nil).FindDuplicates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
	assert.Equal(t, 0, report.Summary.TotalRecords)
	assert.Equal(t, 0, report.Summary.GroupCount)
}

func TestFindDuplicates_SingleRecord(t *testing.T) {
	report, err := newDetector(nil).FindDuplicates(context.Background(), []types.Record{
		jobRecord("Engineer", "Acme", "Go"),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
	assert.Equal(t, 1, report.Summary.TotalRecords)
}

func TestFindDuplicates_GroupsObviousDuplicates(t *testing.T) {
	a := jobRecord("Software Engineer", "Acme Corp.", "Go", "SQL")
	b := jobRecord("Software Engineer", "Acme Corporation", "Go", "SQL")
	unrelated := types.Record{
		ID:        uuid.New(),
		Kind:      types.RecordKindJob,
		Title:     "Accountant",
		Org:       "Globex",
		DateStart: date(2010, 1, 1),
		DateEnd:   date(2011, 1, 1),
		Skills:    []string{"Excel"},
	}

	report, err := newDetector(nil).FindDuplicates(context.Background(), []types.Record{a, b, unrelated})
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)

	group := report.Groups[0]
	require.Len(t, group.Duplicates, 1)
	members := []uuid.UUID{group.Primary.ID, group.Duplicates[0].Record.ID}
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, members)
	assert.NotNil(t, group.Recommendation)
	assert.Equal(t, group.Primary.ID, group.Recommendation.PrimaryID)

	assert.Equal(t, 3, report.Summary.TotalRecords)
	assert.Equal(t, 1, report.Summary.GroupCount)
	assert.Equal(t, 1, report.Summary.DuplicateRecords)
	assert.Len(t, report.Recommendations, 1)
}

func TestFindDuplicates_PrimaryHasMostChunks(t *testing.T) {
	a := jobRecord("Software Engineer", "Acme", "Go", "SQL")
	b := jobRecord("Software Engineer", "Acme", "Go", "SQL")

	chunks := store.NewMemoryChunkStore()
	chunks.Seed(
		types.ContentChunk{ID: uuid.New(), RecordID: b.ID, Ordinal: 0, Text: "built things"},
		types.ContentChunk{ID: uuid.New(), RecordID: b.ID, Ordinal: 1, Text: "shipped things"},
	)

	report, err := newDetector(chunks).FindDuplicates(context.Background(), []types.Record{a, b})
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, b.ID, report.Groups[0].Primary.ID)
}

func TestClassifyDuplicateType(t *testing.T) {
	candidate := func(overall float64) types.DuplicateCandidate {
		return types.DuplicateCandidate{Similarity: types.SimilarityResult{Overall: overall}}
	}
	tests := []struct {
		name       string
		candidates []types.DuplicateCandidate
		want       types.DuplicateType
	}{
		{"exact", []types.DuplicateCandidate{candidate(0.96)}, types.DuplicateExact},
		{"exact boundary", []types.DuplicateCandidate{candidate(0.95)}, types.DuplicateExact},
		{"near", []types.DuplicateCandidate{candidate(0.90)}, types.DuplicateNear},
		{"possible", []types.DuplicateCandidate{candidate(0.75)}, types.DuplicatePossible},
		{"strongest member decides", []types.DuplicateCandidate{candidate(0.70), candidate(0.96)}, types.DuplicateExact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDuplicateType(tt.candidates))
		})
	}
}

func TestClassifyDuplicateType_Monotonic(t *testing.T) {
	// Raising any score may only move the classification toward exact.
	order := map[types.DuplicateType]int{
		types.DuplicatePossible: 0,
		types.DuplicateNear:     1,
		types.DuplicateExact:    2,
	}
	base := []types.DuplicateCandidate{
		{Similarity: types.SimilarityResult{Overall: 0.80}},
		{Similarity: types.SimilarityResult{Overall: 0.60}},
	}
	prev := ClassifyDuplicateType(base)
	for _, bump := range []float64{0.85, 0.90, 0.95, 1.0} {
		base[1].Similarity.Overall = bump
		next := ClassifyDuplicateType(base)
		assert.GreaterOrEqual(t, order[next], order[prev])
		prev = next
	}
}

func TestPairMatrix(t *testing.T) {
	m := newPairMatrix(4)
	m.set(0, 3, types.SimilarityResult{Overall: 0.5})
	m.set(2, 1, types.SimilarityResult{Overall: 0.7})

	assert.Equal(t, 0.5, m.at(3, 0).Overall)
	assert.Equal(t, 0.7, m.at(1, 2).Overall)
	assert.Equal(t, 0.0, m.at(0, 1).Overall)
}

func TestUnionFind_Components(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(3, 4)

	components := uf.components()
	require.Len(t, components, 2)
	assert.ElementsMatch(t, []int{0, 1, 2}, components[0])
	assert.ElementsMatch(t, []int{3, 4}, components[1])
}
