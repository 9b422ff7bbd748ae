package types

import "github.com/google/uuid"

// DuplicateType classifies a duplicate group by its strongest member match.
type DuplicateType string

// Duplicate group classifications.
const (
	DuplicateExact    DuplicateType = "exact_duplicate"
	DuplicateNear     DuplicateType = "near_duplicate"
	DuplicatePossible DuplicateType = "possible_duplicate"
)

// DuplicateCandidate is one record suspected to duplicate a group's primary,
// with the similarity and confidence computed against that primary.
type DuplicateCandidate struct {
	Record     Record           `json:"record"`
	Similarity SimilarityResult `json:"similarity"`
	Confidence Confidence       `json:"confidence"`
}

// MergeRecommendation suggests how a duplicate group should be handled.
// Priority is "high" for auto-mergeable groups and "review" otherwise.
type MergeRecommendation struct {
	PrimaryID uuid.UUID `json:"primary_id"`
	Strategy  string    `json:"strategy"`
	Priority  string    `json:"priority"`
	Reason    string    `json:"reason"`
}

// DuplicateGroup is one primary record plus an ordered list of duplicate
// candidates, strongest match first.
type DuplicateGroup struct {
	Primary        Record               `json:"primary"`
	Duplicates     []DuplicateCandidate `json:"duplicates"`
	Type           DuplicateType        `json:"type"`
	Recommendation *MergeRecommendation `json:"recommendation,omitempty"`
}

// DuplicateSummary aggregates counts over a detection run.
type DuplicateSummary struct {
	TotalRecords     int `json:"total_records"`
	GroupCount       int `json:"group_count"`
	DuplicateRecords int `json:"duplicate_records"`
	ExactCount       int `json:"exact_count"`
	NearCount        int `json:"near_count"`
	AutoMergeable    int `json:"auto_mergeable"`
	NeedsReview      int `json:"needs_review"`
}

// DuplicateReport is the full output of a duplicate detection scan.
type DuplicateReport struct {
	Groups          []DuplicateGroup      `json:"duplicate_groups"`
	Summary         DuplicateSummary      `json:"summary"`
	Recommendations []MergeRecommendation `json:"recommendations"`
}
