package similarity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerbase/internal/embedding"
	"github.com/jonathan/careerbase/internal/types"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCompanySimilarity_Reflexive(t *testing.T) {
	for _, org := range []string{"Acme Corp.", "Google", "Widgets & Co"} {
		assert.Equal(t, 1.0, CompanySimilarity(org, org), org)
	}
}

func TestCompanySimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"suffix expansion", "Acme Corp.", "Acme Corporation", 1.0},
		{"inc expansion", "Stripe Inc.", "Stripe Incorporated", 1.0},
		{"llc long form", "Foo LLC", "Foo Limited Liability Company", 1.0},
		{"ampersand", "Johnson & Johnson", "Johnson and Johnson", 1.0},
		{"case and punctuation", "ACME, corp", "acme Corporation", 1.0},
		{"empty a", "", "Acme", 0},
		{"empty b", "Acme", "", 0},
		{"both empty", "", "", 0},
		{"disjoint", "Acme Corporation", "Globex Corporation", 1.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CompanySimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCompanySimilarity_AcmeExample(t *testing.T) {
	// "Acme Corp." and "Acme Corporation" must score at least 0.95.
	assert.GreaterOrEqual(t, CompanySimilarity("Acme Corp.", "Acme Corporation"), 0.95)
}

func TestTitleSimilarity_Reflexive(t *testing.T) {
	for _, title := range []string{"Software Engineer", "Sr. Staff Engineer II", "CTO"} {
		assert.Equal(t, 1.0, TitleSimilarity(title, title), title)
	}
}

func TestTitleSimilarity_SeniorityModifier(t *testing.T) {
	// Titles differing only by a seniority modifier score exactly 0.9.
	assert.Equal(t, 0.9, TitleSimilarity("Software Engineer", "Senior Software Engineer"))
	assert.Equal(t, 0.9, TitleSimilarity("Sr. Data Scientist", "Data Scientist"))
	assert.Equal(t, 0.9, TitleSimilarity("Lead Engineer", "Staff Engineer"))
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"roman suffix ignored", "Software Engineer II", "Software Engineer", 1.0},
		{"empty", "", "Engineer", 0},
		{"subset reward", "Software Engineer", "Software Engineer Manager", 0.75},
		{"disjoint", "Accountant", "Software Engineer", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TitleSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTitleSimilarity_NonSubsetCappedBelowPointNine(t *testing.T) {
	// Overlapping but non-subset token sets never reach the modifier score.
	got := TitleSimilarity("Backend Software Engineer", "Frontend Software Engineer")
	assert.Less(t, got, 0.9)
}

func TestDateSimilarity(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name           string
		aStart, aEnd   *time.Time
		bStart, bEnd   *time.Time
		want           float64
	}{
		{"identical ranges", date(2020, 1, 1), date(2021, 1, 1), date(2020, 1, 1), date(2021, 1, 1), 1},
		{"disjoint", date(2018, 1, 1), date(2019, 1, 1), date(2020, 1, 1), date(2021, 1, 1), 0},
		{"missing start a", nil, date(2021, 1, 1), date(2020, 1, 1), date(2021, 1, 1), 0},
		{"missing start b", date(2020, 1, 1), date(2021, 1, 1), nil, nil, 0},
		{"half contained", date(2020, 1, 1), date(2022, 1, 1), date(2020, 1, 1), date(2021, 1, 1), 0.5},
		{"identical ongoing", date(2025, 6, 1), nil, date(2025, 6, 1), nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := types.Record{DateStart: tt.aStart, DateEnd: tt.aEnd}
			b := types.Record{DateStart: tt.bStart, DateEnd: tt.bEnd}
			got := dateSimilarityAt(a, b, now)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestSkillsSimilarity_Symmetry(t *testing.T) {
	a := []string{"Go", "Python", "SQL"}
	b := []string{"python", "Rust"}
	assert.Equal(t, SkillsSimilarity(a, b), SkillsSimilarity(b, a))
}

func TestSkillsSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 1},
		{"one empty", []string{"Go"}, nil, 0},
		{"identical modulo case", []string{"Go", "SQL"}, []string{"go", "sql"}, 1},
		{"spec example", []string{"JavaScript", "React", "Node.js"}, []string{"JavaScript", "React", "Vue.js"}, 0.5},
		{"disjoint", []string{"Go"}, []string{"Rust"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SkillsSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCalculate_OverallIsWeightedCombination(t *testing.T) {
	scorer := New(Config{})
	a := RecordContent{Record: types.Record{
		ID:        uuid.New(),
		Title:     "Software Engineer",
		Org:       "Acme Corp.",
		DateStart: date(2020, 1, 1),
		DateEnd:   date(2021, 1, 1),
		Skills:    []string{"Go", "SQL"},
	}}
	b := RecordContent{Record: types.Record{
		ID:        uuid.New(),
		Title:     "Software Engineer",
		Org:       "Acme Corporation",
		DateStart: date(2020, 1, 1),
		DateEnd:   date(2021, 1, 1),
		Skills:    []string{"Go", "SQL"},
	}}

	sim := scorer.Calculate(context.Background(), a, b)
	assert.Equal(t, 1.0, sim.Company)
	assert.Equal(t, 1.0, sim.Title)
	assert.Equal(t, 1.0, sim.Dates)
	assert.Equal(t, 1.0, sim.Skills)
	assert.Equal(t, 0.0, sim.Content) // no chunks, no embedder

	// Overall = sum(w*s)/sum(w) with content contributing zero.
	w := DefaultWeights()
	want := (w.Company + w.Title + w.Dates + w.Skills) / w.total()
	assert.InDelta(t, want, sim.Overall, 1e-9)
	require.Len(t, sim.Breakdown, 5)
	for _, fs := range sim.Breakdown {
		assert.InDelta(t, fs.Score*fs.Weight, fs.Weighted, 1e-9)
	}
}

func TestCalculate_ContentFromChunkEmbeddings(t *testing.T) {
	scorer := New(Config{})
	vec := []float32{1, 0, 0}
	a := RecordContent{
		Record: types.Record{ID: uuid.New()},
		Chunks: []types.ContentChunk{{Embedding: vec}},
	}
	b := RecordContent{
		Record: types.Record{ID: uuid.New()},
		Chunks: []types.ContentChunk{{Embedding: vec}},
	}

	sim := scorer.Calculate(context.Background(), a, b)
	assert.InDelta(t, 1.0, sim.Content, 1e-6)
}

func TestCalculate_ContentFallbackToEmbedder(t *testing.T) {
	fake := &embedding.Fake{Dim: 8}
	scorer := New(Config{Embedder: fake})
	a := RecordContent{Record: types.Record{ID: uuid.New(), Description: "<p>Built billing systems</p>"}}
	b := RecordContent{Record: types.Record{ID: uuid.New(), Description: "Built billing systems"}}

	sim := scorer.Calculate(context.Background(), a, b)
	assert.InDelta(t, 1.0, sim.Content, 1e-6)
	assert.Equal(t, 2, fake.Calls)
}

func TestCalculate_EmbeddingFailureScoresZero(t *testing.T) {
	fake := &embedding.Fake{Dim: 8, SoftFail: true}
	scorer := New(Config{Embedder: fake})
	a := RecordContent{Record: types.Record{ID: uuid.New(), Description: "something"}}
	b := RecordContent{Record: types.Record{ID: uuid.New(), Description: "something"}}

	sim := scorer.Calculate(context.Background(), a, b)
	assert.Equal(t, 0.0, sim.Content)
}
