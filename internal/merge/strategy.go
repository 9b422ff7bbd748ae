// Package merge computes merged record values for duplicate groups under a
// closed set of named strategies.
package merge

import (
	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/parsing"
	"github.com/jonathan/careerbase/internal/types"
)

// Strategy names accepted by Resolve.
const (
	StrategyKeepPrimary   = "keep_primary"
	StrategyComprehensive = "merge_comprehensive"
	StrategyPreferRecent  = "prefer_recent"
)

// Strategy computes the merged field values for a primary record and its
// duplicates. Implementations never change the record's identity: the result
// always carries the primary's ID.
type Strategy interface {
	Name() string
	Resolve(primary types.Record, duplicates []types.Record) types.Record
}

// Resolve returns the strategy for the given name. Unknown names are a
// ValidationError; there is no silent default.
func Resolve(name string) (Strategy, error) {
	switch name {
	case StrategyKeepPrimary:
		return keepPrimary{}, nil
	case StrategyComprehensive:
		return comprehensive{}, nil
	case StrategyPreferRecent:
		return preferRecent{}, nil
	}
	return nil, cberrors.NewValidation("unknown merge strategy %q", name)
}

// Names returns the known strategy names.
func Names() []string {
	return []string{StrategyKeepPrimary, StrategyComprehensive, StrategyPreferRecent}
}

// keepPrimary retains all primary scalar fields; only the skill set widens to
// the normalized union across all operands.
type keepPrimary struct{}

func (keepPrimary) Name() string { return StrategyKeepPrimary }

func (keepPrimary) Resolve(primary types.Record, duplicates []types.Record) types.Record {
	merged := primary.Clone()
	merged.Skills = unionSkills(primary, duplicates)
	return merged
}

// comprehensive keeps the primary's identity fields but takes the longest
// non-empty description and fills a missing location from the duplicates.
type comprehensive struct{}

func (comprehensive) Name() string { return StrategyComprehensive }

func (comprehensive) Resolve(primary types.Record, duplicates []types.Record) types.Record {
	merged := primary.Clone()
	merged.Skills = unionSkills(primary, duplicates)

	// Longest description wins; ties keep the earlier operand.
	for _, dup := range duplicates {
		if len(dup.Description) > len(merged.Description) {
			merged.Description = dup.Description
		}
	}

	if merged.Location == nil || *merged.Location == "" {
		for _, dup := range duplicates {
			if dup.Location != nil && *dup.Location != "" {
				loc := *dup.Location
				merged.Location = &loc
				break
			}
		}
	}
	return merged
}

// preferRecent copies every scalar field from the operand with the latest
// DateStart; a missing DateStart sorts earliest. The primary's ID is kept
// regardless of which operand wins.
type preferRecent struct{}

func (preferRecent) Name() string { return StrategyPreferRecent }

func (preferRecent) Resolve(primary types.Record, duplicates []types.Record) types.Record {
	winner := primary
	for _, dup := range duplicates {
		if startsAfter(dup, winner) {
			winner = dup
		}
	}

	merged := winner.Clone()
	merged.ID = primary.ID
	merged.UserID = primary.UserID
	merged.CreatedAt = primary.CreatedAt
	merged.Skills = unionSkills(primary, duplicates)
	return merged
}

// startsAfter reports whether a began strictly after b. Records without a
// DateStart never win.
func startsAfter(a, b types.Record) bool {
	if a.DateStart == nil {
		return false
	}
	if b.DateStart == nil {
		return true
	}
	return a.DateStart.After(*b.DateStart)
}

// unionSkills is the normalized union of the primary's and all duplicates'
// skill sets, primary's skills first.
func unionSkills(primary types.Record, duplicates []types.Record) []string {
	all := append([]string(nil), primary.Skills...)
	for _, dup := range duplicates {
		all = append(all, dup.Skills...)
	}
	return parsing.NormalizeSkillSet(all)
}
