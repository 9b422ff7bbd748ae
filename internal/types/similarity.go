package types

// FieldScore is one line of the similarity breakdown used for UI and audit
// explanation.
type FieldScore struct {
	Field    string  `json:"field"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// SimilarityResult holds per-field similarity scores for a record pair, each
// in [0,1], plus the weighted overall score. It is ephemeral and never
// persisted.
type SimilarityResult struct {
	Company   float64      `json:"company"`
	Title     float64      `json:"title"`
	Dates     float64      `json:"dates"`
	Skills    float64      `json:"skills"`
	Content   float64      `json:"content"`
	Overall   float64      `json:"overall"`
	Breakdown []FieldScore `json:"breakdown"`
}

// ConfidenceLevel is a discrete bucket summarizing how likely two records are
// true duplicates.
type ConfidenceLevel string

// Confidence tiers, highest first.
const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
)

// Confidence is derived from a SimilarityResult. AutoMergeable marks
// candidates safe to merge without human review. Reasons are additive
// threshold checks, independent of the tier computation.
type Confidence struct {
	Level         ConfidenceLevel `json:"level"`
	AutoMergeable bool            `json:"auto_mergeable"`
	Reasons       []string        `json:"reasons"`
}
