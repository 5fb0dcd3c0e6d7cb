// Package project builds iteration context from a project's history and
// compares iterations against each other.
package project

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

const (
	defaultMaxUseCases     = 5
	defaultMaxStarredPlays = 10
	defaultMaxAnnotations  = 20
)

// Accumulator derives the context bundle a new iteration inherits from its
// project's completed history.
type Accumulator struct {
	store    store.Store
	maxCases int
	maxPlays int
	maxNotes int
}

// NewAccumulator creates an Accumulator. Zero limits fall back to defaults.
func NewAccumulator(st store.Store, cfg config.PipelineConfig) *Accumulator {
	a := &Accumulator{
		store:    st,
		maxCases: cfg.MaxUseCases,
		maxPlays: cfg.MaxStarredPlays,
		maxNotes: cfg.MaxAnnotations,
	}
	if a.maxCases <= 0 {
		a.maxCases = defaultMaxUseCases
	}
	if a.maxPlays <= 0 {
		a.maxPlays = defaultMaxStarredPlays
	}
	if a.maxNotes <= 0 {
		a.maxNotes = defaultMaxAnnotations
	}
	return a
}

// BuildContext builds the immediate-mode bundle for an iteration: findings
// from the iteration directly before it in sequence, plus project-wide starred
// plays and notes. The bundle stays empty when the project is fresh-mode, the
// iteration is the first of its project, or the direct predecessor never
// finished a run. Idempotent: calling twice without intervening writes yields
// the same bundle.
func (a *Accumulator) BuildContext(ctx context.Context, project *model.Project, iter *model.Iteration) (*model.ContextBundle, error) {
	bundle := &model.ContextBundle{}
	if project.ContextMode == model.ContextModeFresh {
		return bundle, nil
	}

	prev, err := a.store.PredecessorIteration(ctx, project.ID, iter.Sequence)
	if err != nil {
		return nil, eris.Wrap(err, "project: find predecessor")
	}
	if prev == nil || prev.Status != model.IterationStatusCompleted || prev.JobID == "" {
		return bundle, nil
	}

	bundle.PreviousIteration = &model.IterationSummary{
		Sequence:   prev.Sequence,
		Name:       prev.Label(),
		ClientName: project.ClientName,
		Status:     prev.Status,
		CreatedAt:  prev.CreatedAt,
	}

	if err := a.collectFindings(ctx, prev.JobID, bundle); err != nil {
		return nil, err
	}

	if err := a.collectShared(ctx, project.ID, bundle); err != nil {
		return nil, err
	}

	return bundle, nil
}

// CumulativeContext builds the cumulative-mode bundle: deduplicated findings
// across every prior iteration in sequence order.
func (a *Accumulator) CumulativeContext(ctx context.Context, project *model.Project, iter *model.Iteration) (*model.ContextBundle, error) {
	bundle := &model.ContextBundle{}
	if project.ContextMode == model.ContextModeFresh {
		return bundle, nil
	}

	prior, err := a.store.ListIterationsBefore(ctx, project.ID, iter.Sequence)
	if err != nil {
		return nil, eris.Wrap(err, "project: list prior iterations")
	}

	seenPain := map[string]bool{}
	seenOpp := map[string]bool{}
	seenTitle := map[string]bool{}

	for _, it := range prior {
		if it.Status != model.IterationStatusCompleted || it.JobID == "" {
			continue
		}

		report, err := a.store.GetReport(ctx, it.JobID)
		if err != nil {
			return nil, eris.Wrapf(err, "project: read report for iteration %d", it.Sequence)
		}
		if report != nil {
			for _, p := range report.PainPoints {
				if !seenPain[p] {
					seenPain[p] = true
					bundle.CumulativePainPoints = append(bundle.CumulativePainPoints, p)
				}
			}
			for _, o := range report.Opportunities {
				if !seenOpp[o] {
					seenOpp[o] = true
					bundle.CumulativeOpportunities = append(bundle.CumulativeOpportunities, o)
				}
			}
		}

		cases, err := a.store.ListUseCases(ctx, it.JobID, store.UseCaseFilter{Priority: model.PriorityHigh, Limit: a.maxCases})
		if err != nil {
			return nil, eris.Wrapf(err, "project: list use cases for iteration %d", it.Sequence)
		}
		for _, uc := range cases {
			if !seenTitle[uc.Title] {
				seenTitle[uc.Title] = true
				bundle.CumulativeUseCases = append(bundle.CumulativeUseCases, useCaseSummary(uc))
			}
		}
	}

	bundle.IterationCount = len(prior)

	if err := a.collectShared(ctx, project.ID, bundle); err != nil {
		return nil, err
	}

	return bundle, nil
}

// collectFindings pulls the predecessor job's report findings and top use
// cases into the bundle. Empty fields stay absent.
func (a *Accumulator) collectFindings(ctx context.Context, jobID string, bundle *model.ContextBundle) error {
	report, err := a.store.GetReport(ctx, jobID)
	if err != nil {
		return eris.Wrap(err, "project: read predecessor report")
	}
	if report != nil {
		summary := model.ReportSummary{
			CompanyOverview: report.CompanyOverview,
			DigitalMaturity: report.DigitalMaturity,
			AIAdoptionStage: report.AIAdoptionStage,
			AIFootprint:     report.AIFootprint,
			KeyInitiatives:  report.KeyInitiatives,
			StrategicGoals:  report.StrategicGoals,
		}
		if !reportSummaryEmpty(summary) {
			bundle.PreviousReport = &summary
		}
		if len(report.PainPoints) > 0 {
			bundle.PainPoints = report.PainPoints
		}
		if len(report.Opportunities) > 0 {
			bundle.Opportunities = report.Opportunities
		}
	}

	cases, err := a.store.ListUseCases(ctx, jobID, store.UseCaseFilter{Priority: model.PriorityHigh, Limit: a.maxCases})
	if err != nil {
		return eris.Wrap(err, "project: list predecessor use cases")
	}
	for _, uc := range cases {
		bundle.UseCases = append(bundle.UseCases, useCaseSummary(uc))
	}

	return nil
}

// collectShared adds the project-wide starred plays and user notes.
func (a *Accumulator) collectShared(ctx context.Context, projectID string, bundle *model.ContextBundle) error {
	plays, err := a.store.ListStarredWorkProducts(ctx, projectID, "play", a.maxPlays)
	if err != nil {
		return eris.Wrap(err, "project: list starred plays")
	}
	for _, wp := range plays {
		ps := model.PlaySummary{
			Title:            wp.Title,
			ElevatorPitch:    wp.Pitch,
			ValueProposition: wp.ValueProposition,
			Notes:            wp.Notes,
		}
		if wp.SourceIterationID != "" {
			if src, err := a.store.GetIteration(ctx, wp.SourceIterationID); err == nil && src != nil {
				ps.IterationSequence = src.Sequence
			} else if err != nil {
				zap.L().Warn("project: could not resolve play source iteration",
					zap.String("work_product_id", wp.ID), zap.Error(err))
			}
		}
		bundle.StarredPlays = append(bundle.StarredPlays, ps)
	}

	notes, err := a.store.ListAnnotations(ctx, projectID, a.maxNotes)
	if err != nil {
		return eris.Wrap(err, "project: list annotations")
	}
	for _, n := range notes {
		bundle.UserNotes = append(bundle.UserNotes, model.UserNote{Text: n.Text, CreatedAt: n.CreatedAt})
	}

	return nil
}

func reportSummaryEmpty(s model.ReportSummary) bool {
	return s.CompanyOverview == "" &&
		s.DigitalMaturity == "" &&
		s.AIAdoptionStage == "" &&
		s.AIFootprint == "" &&
		len(s.KeyInitiatives) == 0 &&
		len(s.StrategicGoals) == 0
}

func useCaseSummary(uc model.UseCase) model.UseCaseSummary {
	return model.UseCaseSummary{
		Title:            uc.Title,
		Description:      uc.Description,
		BusinessProblem:  uc.BusinessProblem,
		ImpactScore:      uc.ImpactScore,
		FeasibilityScore: uc.FeasibilityScore,
	}
}
