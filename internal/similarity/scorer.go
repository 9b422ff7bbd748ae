package similarity

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/jonathan/careerbase/internal/embedding"
	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/parsing"
	"github.com/jonathan/careerbase/internal/types"
)

// Weights combine the five field scores into the overall score. Company and
// title weigh highest, content and dates are secondary, skills lowest.
type Weights struct {
	Company float64 `json:"company"`
	Title   float64 `json:"title"`
	Dates   float64 `json:"dates"`
	Skills  float64 `json:"skills"`
	Content float64 `json:"content"`
}

// DefaultWeights returns the default field weighting.
func DefaultWeights() Weights {
	return Weights{Company: 0.30, Title: 0.25, Dates: 0.15, Skills: 0.10, Content: 0.20}
}

func (w Weights) total() float64 {
	return w.Company + w.Title + w.Dates + w.Skills + w.Content
}

// RecordContent pairs a record with its content chunks for scoring.
type RecordContent struct {
	Record types.Record
	Chunks []types.ContentChunk
}

// Config configures a Scorer. Zero-value weights and thresholds fall back to
// the defaults.
type Config struct {
	Weights    Weights
	Thresholds Thresholds
	Embedder   embedding.Embedder
	Logger     logging.Logger
}

// Scorer computes similarity results and confidence classifications for
// record pairs.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
	embedder   embedding.Embedder
	log        logging.Logger
}

// New creates a Scorer from the given configuration.
func New(cfg Config) *Scorer {
	if cfg.Weights.total() == 0 {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Scorer{
		weights:    cfg.Weights,
		thresholds: cfg.Thresholds,
		embedder:   cfg.Embedder,
		log:        cfg.Logger,
	}
}

// Thresholds returns the classification thresholds in use.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// CompanySimilarity scores two organization names in [0,1]. Normalized
// equality scores 1.0; otherwise token-set overlap. Either input empty
// scores 0.
func CompanySimilarity(a, b string) float64 {
	ta := normalizeCompany(a)
	tb := normalizeCompany(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if strings.Join(ta, " ") == strings.Join(tb, " ") {
		return 1
	}
	return jaccard(tokenSet(ta), tokenSet(tb))
}

// TitleSimilarity scores two job titles in [0,1]. Identical normalized
// titles score 1.0; titles differing only by a seniority modifier score
// exactly 0.9; otherwise token overlap, capped below 0.9 unless one title's
// token set is contained in the other's.
func TitleSimilarity(a, b string) float64 {
	rawA, baseA := normalizeTitle(a)
	rawB, baseB := normalizeTitle(b)
	if len(rawA) == 0 || len(rawB) == 0 {
		return 0
	}
	if strings.Join(rawA, " ") == strings.Join(rawB, " ") {
		return 1
	}
	if strings.Join(baseA, " ") == strings.Join(baseB, " ") {
		return 0.9
	}

	setA := tokenSet(baseA)
	setB := tokenSet(baseB)
	ratio := jaccard(setA, setB)
	if subset(setA, setB) || subset(setB, setA) {
		return math.Max(ratio, 0.75)
	}
	return math.Min(ratio, 0.85)
}

// DateSimilarity scores the date ranges of two records in [0,1] as interval
// overlap divided by interval union. A nil DateEnd is treated as today.
// A missing DateStart on either side, or disjoint ranges, score 0.
func DateSimilarity(a, b types.Record) float64 {
	return dateSimilarityAt(a, b, time.Now())
}

func dateSimilarityAt(a, b types.Record, now time.Time) float64 {
	if a.DateStart == nil || b.DateStart == nil {
		return 0
	}
	startA, endA := *a.DateStart, now
	if a.DateEnd != nil {
		endA = *a.DateEnd
	}
	startB, endB := *b.DateStart, now
	if b.DateEnd != nil {
		endB = *b.DateEnd
	}
	if endA.Before(startA) || endB.Before(startB) {
		return 0
	}

	overlapStart := maxTime(startA, startB)
	overlapEnd := minTime(endA, endB)
	if overlapEnd.Before(overlapStart) {
		return 0
	}

	union := maxTime(endA, endB).Sub(minTime(startA, startB))
	if union == 0 {
		// Two identical zero-length ranges.
		return 1
	}
	overlap := overlapEnd.Sub(overlapStart)
	if overlap == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

// SkillsSimilarity scores two skill sets in [0,1] by Jaccard index after
// case normalization. Two empty sets are vacuously identical (1); exactly
// one empty set scores 0.
func SkillsSimilarity(a, b []string) float64 {
	setA := normalizedSkillSet(a)
	setB := normalizedSkillSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	return jaccard(setA, setB)
}

func normalizedSkillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// Calculate scores a record pair across all five fields and combines them
// into the weighted overall score, returning the full breakdown for audit.
func (s *Scorer) Calculate(ctx context.Context, a, b RecordContent) types.SimilarityResult {
	result := types.SimilarityResult{
		Company: CompanySimilarity(a.Record.Org, b.Record.Org),
		Title:   TitleSimilarity(a.Record.Title, b.Record.Title),
		Dates:   DateSimilarity(a.Record, b.Record),
		Skills:  SkillsSimilarity(a.Record.Skills, b.Record.Skills),
		Content: s.contentSimilarity(ctx, a, b),
	}

	fields := []struct {
		name   string
		score  float64
		weight float64
	}{
		{"company", result.Company, s.weights.Company},
		{"title", result.Title, s.weights.Title},
		{"dates", result.Dates, s.weights.Dates},
		{"skills", result.Skills, s.weights.Skills},
		{"content", result.Content, s.weights.Content},
	}

	total := s.weights.total()
	var weighted float64
	result.Breakdown = make([]types.FieldScore, 0, len(fields))
	for _, f := range fields {
		contribution := f.score * f.weight
		weighted += contribution
		result.Breakdown = append(result.Breakdown, types.FieldScore{
			Field:    f.name,
			Score:    f.score,
			Weight:   f.weight,
			Weighted: contribution,
		})
	}
	result.Overall = weighted / total
	return result
}

// contentSimilarity is the cosine similarity between the mean chunk
// embeddings of the two records. Embedding failures score 0 rather than
// propagate.
func (s *Scorer) contentSimilarity(ctx context.Context, a, b RecordContent) float64 {
	va := s.contentVector(ctx, a)
	vb := s.contentVector(ctx, b)
	if va == nil || vb == nil {
		return 0
	}
	return math.Max(0, cosine(va, vb))
}

// contentVector prefers stored chunk embeddings and falls back to embedding
// the record description through the collaborator.
func (s *Scorer) contentVector(ctx context.Context, rc RecordContent) []float32 {
	if v := meanEmbedding(rc.Chunks); v != nil {
		return v
	}
	if s.embedder == nil {
		return nil
	}
	text := parsing.StripHTML(rc.Record.Description)
	if text == "" {
		return nil
	}
	vec, err := s.embedder.EmbedText(ctx, text, embedding.ModeQuery)
	if err != nil {
		s.log.Warn("content embedding failed",
			logging.F("record_id", rc.Record.ID), logging.Err(err))
		return nil
	}
	return vec
}

func meanEmbedding(chunks []types.ContentChunk) []float32 {
	var mean []float32
	count := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if mean == nil {
			mean = make([]float32, len(c.Embedding))
		}
		if len(c.Embedding) != len(mean) {
			continue
		}
		for i, v := range c.Embedding {
			mean[i] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range mean {
		mean[i] /= float32(count)
	}
	return mean
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
