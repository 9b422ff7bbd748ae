package similarity

import "github.com/jonathan/careerbase/internal/types"

// Thresholds control tier classification and the per-field reason checks.
// The defaults are operating points, not business truth; deployments tune
// them through configuration.
type Thresholds struct {
	VeryHighOverall float64 `json:"very_high_overall"`
	VeryHighCompany float64 `json:"very_high_company"`
	VeryHighTitle   float64 `json:"very_high_title"`
	HighOverall     float64 `json:"high_overall"`
	MediumOverall   float64 `json:"medium_overall"`

	SameCompany      float64 `json:"same_company"`
	SimilarTitle     float64 `json:"similar_title"`
	OverlappingDates float64 `json:"overlapping_dates"`
	SimilarContent   float64 `json:"similar_content"`
	SharedSkills     float64 `json:"shared_skills"`
}

// DefaultThresholds returns the default classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VeryHighOverall:  0.95,
		VeryHighCompany:  0.90,
		VeryHighTitle:    0.80,
		HighOverall:      0.85,
		MediumOverall:    0.70,
		SameCompany:      0.90,
		SimilarTitle:     0.80,
		OverlappingDates: 0.80,
		SimilarContent:   0.70,
		SharedSkills:     0.50,
	}
}

// Confidence derives the confidence tier, the auto-merge flag, and the
// human-readable reasons from a similarity result. Only the very_high tier
// is auto-mergeable. Reasons are additive threshold checks, independent of
// the tier computation.
func (s *Scorer) Confidence(sim types.SimilarityResult) types.Confidence {
	t := s.thresholds
	c := types.Confidence{Level: types.ConfidenceLow}

	switch {
	case sim.Overall >= t.VeryHighOverall && sim.Company >= t.VeryHighCompany && sim.Title >= t.VeryHighTitle:
		c.Level = types.ConfidenceVeryHigh
		c.AutoMergeable = true
	case sim.Overall >= t.HighOverall:
		c.Level = types.ConfidenceHigh
	case sim.Overall >= t.MediumOverall:
		c.Level = types.ConfidenceMedium
	}

	if sim.Company >= t.SameCompany {
		c.Reasons = append(c.Reasons, "Same company")
	}
	if sim.Title >= t.SimilarTitle {
		c.Reasons = append(c.Reasons, "Similar job title")
	}
	if sim.Dates >= t.OverlappingDates {
		c.Reasons = append(c.Reasons, "Overlapping dates")
	}
	if sim.Content >= t.SimilarContent {
		c.Reasons = append(c.Reasons, "Similar job description")
	}
	if sim.Skills >= t.SharedSkills {
		c.Reasons = append(c.Reasons, "Overlapping skills")
	}
	return c
}
