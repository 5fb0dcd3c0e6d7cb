package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// finalize persists every present payload and triggers memory capture. All
// persistence is best-effort per payload: a completed research run is still
// reported completed even when a write fails.
func (p *Pipeline) finalize(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName), zap.String("job_id", state.JobID))

	state.Status = model.JobStatusCompleted

	if state.JobID == "" {
		log.Warn("pipeline: no job id, skipping persistence")
		return state
	}

	if state.Vertical != "" {
		bestEffort(log, "set vertical", func() error {
			return p.store.SetJobVertical(ctx, state.JobID, state.Vertical)
		})
	}
	if state.Report != nil {
		bestEffort(log, "upsert report", func() error {
			return p.store.UpsertReport(ctx, state.JobID, state.Report)
		})
	}
	if state.CaseStudies != nil {
		bestEffort(log, "replace case studies", func() error {
			return p.store.ReplaceCaseStudies(ctx, state.JobID, state.CaseStudies)
		})
	}
	if state.Gaps != nil {
		bestEffort(log, "upsert gap analysis", func() error {
			return p.store.UpsertGapAnalysis(ctx, state.JobID, state.Gaps)
		})
	}
	if state.InternalOps != nil {
		bestEffort(log, "upsert internal ops", func() error {
			return p.store.UpsertInternalOps(ctx, state.JobID, state.InternalOps)
		})
	}
	if state.Correlations != nil {
		bestEffort(log, "replace correlations", func() error {
			return p.store.ReplaceCorrelations(ctx, state.JobID, state.Correlations)
		})
	}

	log.Info("pipeline: finalized research job")

	if p.capture != nil {
		job := &model.ResearchJob{
			ID:         state.JobID,
			ClientName: state.ClientName,
			Vertical:   state.Vertical,
			Status:     model.JobStatusCompleted,
		}
		if state.Report != nil {
			job.Result = state.Report.FormatText()
		}
		captureResult := p.capture.FromResearch(ctx, job, state.Report)
		log.Info("pipeline: memory capture done",
			zap.Bool("profile_captured", captureResult.ProfileCaptured),
			zap.Int("insights_captured", captureResult.InsightsCaptured),
			zap.Int("errors", len(captureResult.Errors)),
		)
	}

	return state
}
