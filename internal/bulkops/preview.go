package bulkops

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/merge"
	"github.com/jonathan/careerbase/internal/parsing"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

// Per-item cost assumptions used for duration estimates only.
const (
	estimatePerItem    = 50 * time.Millisecond
	estimatePerRefresh = 200 * time.Millisecond
)

// Conflict severities.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// PlannedChange is one intended field mutation.
type PlannedChange struct {
	RecordID uuid.UUID `json:"record_id"`
	Field    string    `json:"field"`
	Before   any       `json:"before,omitempty"`
	After    any       `json:"after,omitempty"`
}

// Conflict flags a problem the caller should review before executing.
// Warnings do not block execution; errors mark items that would fail.
type Conflict struct {
	RecordID uuid.UUID `json:"record_id"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
}

// Estimate sizes the work an execution would perform.
type Estimate struct {
	Items              int           `json:"items"`
	EmbeddingRefreshes int           `json:"embedding_refreshes"`
	EstimatedDuration  time.Duration `json:"estimated_duration_ns"`
}

// Preview is the read-only result of planning an operation.
type Preview struct {
	Type      types.OperationType `json:"type"`
	Changes   []PlannedChange     `json:"changes"`
	Conflicts []Conflict          `json:"conflicts"`
	Estimate  Estimate            `json:"estimate"`
}

// Preview plans an operation without mutating anything. Unknown types and
// malformed params are ValidationErrors; missing records surface as
// error-severity conflicts so the caller sees what execute would skip.
func (e *Engine) Preview(ctx context.Context, opType types.OperationType, raw json.RawMessage) (*Preview, error) {
	if !opType.Valid() {
		return nil, cberrors.NewValidation("unknown operation type %q", opType)
	}
	params, err := parseParams(opType, raw)
	if err != nil {
		return nil, err
	}
	return e.preview(ctx, opType, params)
}

func (e *Engine) preview(ctx context.Context, opType types.OperationType, params any) (*Preview, error) {
	switch p := params.(type) {
	case UpdateSkillsParams:
		return e.previewUpdateSkills(ctx, p)
	case FixDatesParams:
		return e.previewFixDates(ctx, p)
	case MergeDuplicatesParams:
		return e.previewMergeDuplicates(ctx, p)
	default:
		return nil, cberrors.NewValidation("unknown operation type %q", opType)
	}
}

func (e *Engine) previewUpdateSkills(ctx context.Context, params UpdateSkillsParams) (*Preview, error) {
	pv := &Preview{Type: types.OpUpdateSkills}
	for _, upd := range params.Updates {
		rec, err := e.records.SelectOne(ctx, upd.RecordID)
		if err != nil {
			if c, ok := itemConflict(upd.RecordID, err); ok {
				pv.Conflicts = append(pv.Conflicts, c)
				continue
			}
			return nil, err
		}
		after := parsing.NormalizeSkillSet(upd.Skills)
		pv.Changes = append(pv.Changes, PlannedChange{
			RecordID: rec.ID,
			Field:    store.FieldSkills,
			Before:   rec.Skills,
			After:    after,
		})
		chunks, err := e.chunks.SelectByRecordID(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		pv.Estimate.EmbeddingRefreshes += len(chunks)
	}
	finishEstimate(pv, len(params.Updates))
	return pv, nil
}

func (e *Engine) previewFixDates(ctx context.Context, params FixDatesParams) (*Preview, error) {
	all, err := e.records.Select(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]types.Record, len(all))
	for _, rec := range all {
		byID[rec.ID] = rec
	}

	pv := &Preview{Type: types.OpFixDates}
	now := time.Now()
	for _, corr := range params.Corrections {
		rec, ok := byID[corr.RecordID]
		if !ok {
			pv.Conflicts = append(pv.Conflicts, Conflict{
				RecordID: corr.RecordID,
				Severity: SeverityError,
				Message:  "record not found",
			})
			continue
		}
		pv.Changes = append(pv.Changes,
			PlannedChange{RecordID: rec.ID, Field: store.FieldDateStart, Before: rec.DateStart, After: corr.DateStart},
			PlannedChange{RecordID: rec.ID, Field: store.FieldDateEnd, Before: rec.DateEnd, After: corr.DateEnd},
		)
		pv.Conflicts = append(pv.Conflicts, dateConflicts(rec, corr, all, now)...)
	}
	finishEstimate(pv, len(params.Corrections))
	return pv, nil
}

// dateConflicts flags timeline overlaps the correction would newly introduce
// against every other record belonging to the same user. An overlap counts
// when it covers more than half of the shorter of the two ranges.
func dateConflicts(rec types.Record, corr DateCorrection, all []types.Record, now time.Time) []Conflict {
	var out []Conflict
	for _, other := range all {
		if other.ID == rec.ID || other.UserID != rec.UserID || other.DateStart == nil {
			continue
		}
		before := overlapRatio(rec.DateStart, rec.DateEnd, other.DateStart, other.DateEnd, now)
		after := overlapRatio(corr.DateStart, corr.DateEnd, other.DateStart, other.DateEnd, now)
		if after > 0.5 && before <= 0.5 {
			out = append(out, Conflict{
				RecordID: rec.ID,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("corrected dates overlap %.0f%% of %q at %s", after*100, other.Title, other.Org),
			})
		}
	}
	return out
}

// overlapRatio returns overlap duration over the shorter range's duration.
// A nil end is treated as ongoing (now). Zero when either start is missing
// or the ranges do not overlap.
func overlapRatio(aStart, aEnd, bStart, bEnd *time.Time, now time.Time) float64 {
	if aStart == nil || bStart == nil {
		return 0
	}
	ae, be := now, now
	if aEnd != nil {
		ae = *aEnd
	}
	if bEnd != nil {
		be = *bEnd
	}
	start := *aStart
	if bStart.After(start) {
		start = *bStart
	}
	end := ae
	if be.Before(end) {
		end = be
	}
	if !end.After(start) {
		return 0
	}
	shorter := ae.Sub(*aStart)
	if d := be.Sub(*bStart); d < shorter {
		shorter = d
	}
	if shorter <= 0 {
		return 0
	}
	return float64(end.Sub(start)) / float64(shorter)
}

func (e *Engine) previewMergeDuplicates(ctx context.Context, params MergeDuplicatesParams) (*Preview, error) {
	pv := &Preview{Type: types.OpMergeDuplicates}
	for _, spec := range params.Merges {
		strategy, err := merge.Resolve(spec.Strategy)
		if err != nil {
			return nil, err
		}
		primary, err := e.records.SelectOne(ctx, spec.PrimaryID)
		if err != nil {
			if c, ok := itemConflict(spec.PrimaryID, err); ok {
				pv.Conflicts = append(pv.Conflicts, c)
				continue
			}
			return nil, err
		}
		var dups []types.Record
		missing := false
		for _, id := range spec.DuplicateIDs {
			dup, err := e.records.SelectOne(ctx, id)
			if err != nil {
				if c, ok := itemConflict(id, err); ok {
					pv.Conflicts = append(pv.Conflicts, c)
					missing = true
					continue
				}
				return nil, err
			}
			dups = append(dups, *dup)
		}
		if missing {
			continue
		}

		merged := strategy.Resolve(*primary, dups)
		pv.Changes = append(pv.Changes, diffRecords(*primary, merged)...)
		for _, dup := range dups {
			pv.Changes = append(pv.Changes, PlannedChange{
				RecordID: dup.ID,
				Field:    "record",
				Before:   "present",
				After:    "deleted",
			})
			chunks, err := e.chunks.SelectByRecordID(ctx, dup.ID)
			if err != nil {
				return nil, err
			}
			pv.Estimate.EmbeddingRefreshes += len(chunks)
		}
	}
	finishEstimate(pv, len(params.Merges))
	return pv, nil
}

// diffRecords lists the field changes merging would apply to the primary.
func diffRecords(before, after types.Record) []PlannedChange {
	var out []PlannedChange
	add := func(field string, b, a any, changed bool) {
		if changed {
			out = append(out, PlannedChange{RecordID: before.ID, Field: field, Before: b, After: a})
		}
	}
	add(store.FieldTitle, before.Title, after.Title, before.Title != after.Title)
	add(store.FieldOrg, before.Org, after.Org, before.Org != after.Org)
	add(store.FieldLocation, before.Location, after.Location, !ptrEqual(before.Location, after.Location))
	add(store.FieldDateStart, before.DateStart, after.DateStart, !timePtrEqual(before.DateStart, after.DateStart))
	add(store.FieldDateEnd, before.DateEnd, after.DateEnd, !timePtrEqual(before.DateEnd, after.DateEnd))
	add(store.FieldSkills, before.Skills, after.Skills, !stringsEqual(before.Skills, after.Skills))
	add(store.FieldDescription, before.Description, after.Description, before.Description != after.Description)
	return out
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// itemConflict converts a per-item lookup failure into a conflict entry.
// Only not-found is treated as an item-level condition.
func itemConflict(id uuid.UUID, err error) (Conflict, bool) {
	if !cberrors.IsNotFound(err) {
		return Conflict{}, false
	}
	return Conflict{RecordID: id, Severity: SeverityError, Message: "record not found"}, true
}

func finishEstimate(pv *Preview, items int) {
	pv.Estimate.Items = items
	pv.Estimate.EstimatedDuration = time.Duration(items)*estimatePerItem +
		time.Duration(pv.Estimate.EmbeddingRefreshes)*estimatePerRefresh
}
