// Package dedupe scans record sets for duplicate and near-duplicate career
// entries and produces a grouped report with merge recommendations.
package dedupe

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/similarity"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

const defaultParallelism = 4

// Config configures a Detector.
type Config struct {
	Scorer *similarity.Scorer
	Chunks store.ChunkStore
	Logger logging.Logger
	// Parallelism bounds concurrent pair scoring. Scoring is pure, so it may
	// run in parallel; only bulk mutations are sequential.
	Parallelism int
}

// Detector finds duplicate groups within a set of records.
type Detector struct {
	scorer      *similarity.Scorer
	chunks      store.ChunkStore
	log         logging.Logger
	parallelism int
}

// New creates a Detector.
func New(cfg Config) *Detector {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	return &Detector{
		scorer:      cfg.Scorer,
		chunks:      cfg.Chunks,
		log:         cfg.Logger,
		parallelism: cfg.Parallelism,
	}
}

// FindDuplicates scores every unordered record pair, clusters matches above
// the medium-confidence threshold, and reports groups, summary counts, and
// recommendations. Zero or one input records yield no groups.
func (d *Detector) FindDuplicates(ctx context.Context, records []types.Record) (*types.DuplicateReport, error) {
	report := &types.DuplicateReport{
		Groups:          []types.DuplicateGroup{},
		Recommendations: []types.MergeRecommendation{},
		Summary:         types.DuplicateSummary{TotalRecords: len(records)},
	}
	if len(records) < 2 {
		return report, nil
	}

	contents, err := d.loadContents(ctx, records)
	if err != nil {
		return nil, err
	}

	sims, err := d.scoreAllPairs(ctx, contents)
	if err != nil {
		return nil, err
	}

	threshold := d.scorer.Thresholds().MediumOverall
	dsu := newUnionFind(len(records))
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if sims.at(i, j).Overall >= threshold {
				dsu.union(i, j)
			}
		}
	}

	for _, component := range dsu.components() {
		if len(component) < 2 {
			continue
		}
		group := d.buildGroup(component, contents, sims)
		report.Groups = append(report.Groups, group)
	}

	// Strongest groups first.
	sort.Slice(report.Groups, func(i, j int) bool {
		a, b := report.Groups[i], report.Groups[j]
		ao, bo := maxOverall(a), maxOverall(b)
		if ao != bo {
			return ao > bo
		}
		return a.Primary.ID.String() < b.Primary.ID.String()
	})

	d.summarize(report)
	d.log.Info("duplicate scan finished",
		logging.F("records", len(records)),
		logging.F("groups", report.Summary.GroupCount),
		logging.F("auto_mergeable", report.Summary.AutoMergeable))
	return report, nil
}

// loadContents pairs each record with its content chunks.
func (d *Detector) loadContents(ctx context.Context, records []types.Record) ([]similarity.RecordContent, error) {
	contents := make([]similarity.RecordContent, len(records))
	for i, rec := range records {
		contents[i] = similarity.RecordContent{Record: rec}
		if d.chunks == nil {
			continue
		}
		chunks, err := d.chunks.SelectByRecordID(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load chunks for record %s: %w", rec.ID, err)
		}
		contents[i].Chunks = chunks
	}
	return contents, nil
}

// scoreAllPairs computes the similarity of every unordered pair, bounded by
// the configured parallelism.
func (d *Detector) scoreAllPairs(ctx context.Context, contents []similarity.RecordContent) (*pairMatrix, error) {
	n := len(contents)
	sims := newPairMatrix(n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			i, j := i, j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sims.set(i, j, d.scorer.Calculate(gctx, contents[i], contents[j]))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sims, nil
}

// buildGroup picks the component's primary and attaches the remaining
// members as candidates scored against that primary.
func (d *Detector) buildGroup(component []int, contents []similarity.RecordContent, sims *pairMatrix) types.DuplicateGroup {
	primaryIdx := pickPrimary(component, contents)

	group := types.DuplicateGroup{Primary: contents[primaryIdx].Record}
	for _, idx := range component {
		if idx == primaryIdx {
			continue
		}
		sim := sims.at(primaryIdx, idx)
		group.Duplicates = append(group.Duplicates, types.DuplicateCandidate{
			Record:     contents[idx].Record,
			Similarity: sim,
			Confidence: d.scorer.Confidence(sim),
		})
	}
	sort.Slice(group.Duplicates, func(i, j int) bool {
		a, b := group.Duplicates[i], group.Duplicates[j]
		if a.Similarity.Overall != b.Similarity.Overall {
			return a.Similarity.Overall > b.Similarity.Overall
		}
		return a.Record.ID.String() < b.Record.ID.String()
	})

	group.Type = ClassifyDuplicateType(group.Duplicates)
	group.Recommendation = recommend(group)
	return group
}

// pickPrimary chooses the record that best represents the cluster: the one
// with the most content chunks, ties broken by earliest DateStart (records
// without a start date sort last), then by id for determinism.
func pickPrimary(component []int, contents []similarity.RecordContent) int {
	best := component[0]
	for _, idx := range component[1:] {
		if betterPrimary(contents[idx], contents[best]) {
			best = idx
		}
	}
	return best
}

func betterPrimary(a, b similarity.RecordContent) bool {
	if len(a.Chunks) != len(b.Chunks) {
		return len(a.Chunks) > len(b.Chunks)
	}
	as, bs := a.Record.DateStart, b.Record.DateStart
	switch {
	case as == nil && bs == nil:
		// fall through to id tie-break
	case as == nil:
		return false
	case bs == nil:
		return true
	case !as.Equal(*bs):
		return as.Before(*bs)
	}
	return a.Record.ID.String() < b.Record.ID.String()
}

// ClassifyDuplicateType classifies a group by its strongest member:
// exact_duplicate at overall >= 0.95, near_duplicate at >= 0.85, otherwise
// possible_duplicate. Raising any member score can only move the group
// toward exact_duplicate.
func ClassifyDuplicateType(candidates []types.DuplicateCandidate) types.DuplicateType {
	var best float64
	for _, c := range candidates {
		if c.Similarity.Overall > best {
			best = c.Similarity.Overall
		}
	}
	switch {
	case best >= 0.95:
		return types.DuplicateExact
	case best >= 0.85:
		return types.DuplicateNear
	}
	return types.DuplicatePossible
}

// recommend attaches a merge recommendation: auto-mergeable groups get high
// priority and a comprehensive merge, the rest are flagged for review.
func recommend(group types.DuplicateGroup) *types.MergeRecommendation {
	auto := false
	for _, c := range group.Duplicates {
		if c.Confidence.AutoMergeable {
			auto = true
			break
		}
	}

	rec := &types.MergeRecommendation{PrimaryID: group.Primary.ID}
	if auto {
		rec.Priority = "high"
		rec.Strategy = "merge_comprehensive"
		rec.Reason = fmt.Sprintf("%d record(s) match %q closely enough to merge automatically",
			len(group.Duplicates), group.Primary.Title)
	} else {
		rec.Priority = "review"
		rec.Strategy = "keep_primary"
		rec.Reason = fmt.Sprintf("%d possible duplicate(s) of %q need manual review",
			len(group.Duplicates), group.Primary.Title)
	}
	return rec
}

func (d *Detector) summarize(report *types.DuplicateReport) {
	s := &report.Summary
	s.GroupCount = len(report.Groups)
	for _, g := range report.Groups {
		s.DuplicateRecords += len(g.Duplicates)
		switch g.Type {
		case types.DuplicateExact:
			s.ExactCount++
		case types.DuplicateNear:
			s.NearCount++
		}
		for _, c := range g.Duplicates {
			if c.Confidence.AutoMergeable {
				s.AutoMergeable++
			} else {
				s.NeedsReview++
			}
		}
		if g.Recommendation != nil {
			report.Recommendations = append(report.Recommendations, *g.Recommendation)
		}
	}
}

func maxOverall(g types.DuplicateGroup) float64 {
	var best float64
	for _, c := range g.Duplicates {
		if c.Similarity.Overall > best {
			best = c.Similarity.Overall
		}
	}
	return best
}
