package project

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// Comparator diffs two iterations of the same project.
type Comparator struct {
	store store.Store
}

// NewComparator creates a Comparator.
func NewComparator(st store.Store) *Comparator {
	return &Comparator{store: st}
}

// Compare snapshots both iterations and computes set differences over their
// list-valued findings. Scores and counts are reported per side, not diffed.
func (c *Comparator) Compare(ctx context.Context, a, b *model.Iteration) (*model.Comparison, error) {
	snapA, err := c.snapshot(ctx, a)
	if err != nil {
		return nil, eris.Wrapf(err, "project: snapshot iteration %d", a.Sequence)
	}
	snapB, err := c.snapshot(ctx, b)
	if err != nil {
		return nil, eris.Wrapf(err, "project: snapshot iteration %d", b.Sequence)
	}

	return &model.Comparison{
		A: *snapA,
		B: *snapB,
		Differences: model.DiffSet{
			PainPoints:    diffLists(painPoints(snapA), painPoints(snapB)),
			Opportunities: diffLists(opportunities(snapA), opportunities(snapB)),
			TalkingPoints: diffLists(talkingPoints(snapA), talkingPoints(snapB)),
		},
	}, nil
}

// snapshot extracts the comparable shape of one iteration.
func (c *Comparator) snapshot(ctx context.Context, iter *model.Iteration) (*model.IterationSnapshot, error) {
	snap := &model.IterationSnapshot{
		ID:        iter.ID,
		Sequence:  iter.Sequence,
		Name:      iter.Label(),
		Status:    iter.Status,
		CreatedAt: iter.CreatedAt,
	}
	if iter.JobID == "" {
		return snap, nil
	}

	job, err := c.store.GetJob(ctx, iter.JobID)
	if err != nil {
		// A dangling job reference degrades to the bare snapshot.
		zap.L().Warn("project: iteration job not found",
			zap.String("iteration_id", iter.ID), zap.String("job_id", iter.JobID), zap.Error(err))
		return snap, nil
	}
	snap.Job = &model.JobSummary{
		ID:         job.ID,
		ClientName: job.ClientName,
		Status:     job.Status,
		Vertical:   job.Vertical,
	}

	report, err := c.store.GetReport(ctx, iter.JobID)
	if err != nil {
		return nil, eris.Wrap(err, "read report")
	}
	if report != nil {
		snap.Report = &model.ReportFields{
			CompanyOverview: report.CompanyOverview,
			PainPoints:      report.PainPoints,
			Opportunities:   report.Opportunities,
			DigitalMaturity: report.DigitalMaturity,
			AIAdoptionStage: report.AIAdoptionStage,
			TalkingPoints:   report.TalkingPoints,
			DecisionMakers:  report.DecisionMakers,
		}
	}

	gaps, err := c.store.GetGapAnalysis(ctx, iter.JobID)
	if err != nil {
		return nil, eris.Wrap(err, "read gap analysis")
	}
	if gaps != nil {
		snap.GapAnalysis = &model.GapFields{
			TechnologyGaps:  gaps.TechnologyGaps,
			CapabilityGaps:  gaps.CapabilityGaps,
			ProcessGaps:     gaps.ProcessGaps,
			Recommendations: gaps.Recommendations,
			PriorityAreas:   gaps.PriorityAreas,
		}
	}

	if snap.UseCaseCount, err = c.store.CountUseCases(ctx, iter.JobID); err != nil {
		return nil, eris.Wrap(err, "count use cases")
	}
	if snap.PersonaCount, err = c.store.CountPersonas(ctx, iter.JobID); err != nil {
		return nil, eris.Wrap(err, "count personas")
	}
	if snap.CaseStudyCount, err = c.store.CountCaseStudies(ctx, iter.JobID); err != nil {
		return nil, eris.Wrap(err, "count case studies")
	}

	return snap, nil
}

// diffLists computes {added: B-A, removed: A-B, unchanged: A∩B} by exact
// string membership. Duplicate entries within a list collapse; output order
// follows the list each element came from.
func diffLists(a, b []string) model.ListDiff {
	inA := toSet(a)
	inB := toSet(b)

	diff := model.ListDiff{
		Added:     []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}
	for _, item := range b {
		if !inB[item] {
			continue // already emitted
		}
		if inA[item] {
			diff.Unchanged = append(diff.Unchanged, item)
		} else {
			diff.Added = append(diff.Added, item)
		}
		inB[item] = false
	}
	seen := toSet(b)
	for _, item := range a {
		if !inA[item] {
			continue
		}
		if !seen[item] {
			diff.Removed = append(diff.Removed, item)
		}
		inA[item] = false
	}
	return diff
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func painPoints(s *model.IterationSnapshot) []string {
	if s.Report == nil {
		return nil
	}
	return s.Report.PainPoints
}

func opportunities(s *model.IterationSnapshot) []string {
	if s.Report == nil {
		return nil
	}
	return s.Report.Opportunities
}

func talkingPoints(s *model.IterationSnapshot) []string {
	if s.Report == nil {
		return nil
	}
	return s.Report.TalkingPoints
}
