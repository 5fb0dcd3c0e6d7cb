// Package pipeline runs the staged prospect-research workflow: validate,
// deep research, vertical classification, competitor search, gap analysis,
// internal-ops intelligence, gap correlation, and persistence.
package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/memory"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

// JobInput holds the four orchestrator inputs for one research run.
type JobInput struct {
	ClientName     string
	SalesHistory   string
	PromptOverride string
	JobID          string
}

// Pipeline orchestrates the research stages for a single job.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	anthropic anthropic.Client
	capture   memory.Capturer
	verticals *model.VerticalRegistry
}

// New creates a Pipeline with all dependencies. capture may be nil when no
// vector store is configured.
func New(
	cfg *config.Config,
	st store.Store,
	aiClient anthropic.Client,
	capture memory.Capturer,
	verticals *model.VerticalRegistry,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		anthropic: aiClient,
		capture:   capture,
		verticals: verticals,
	}
}

// Run executes the full research workflow for one job and returns the
// terminal state. Stages are pure over the state value; Run threads the
// state through them in order and mirrors progress onto the job record.
func (p *Pipeline) Run(ctx context.Context, input JobInput) model.WorkflowState {
	log := zap.L().With(zap.String("client", input.ClientName), zap.String("job_id", input.JobID))
	log.Info("pipeline: starting research")

	state := model.WorkflowState{
		ClientName:     input.ClientName,
		SalesHistory:   input.SalesHistory,
		PromptOverride: input.PromptOverride,
		JobID:          input.JobID,
		Status:         model.JobStatusPending,
	}

	// Status mirror helper. A failed write never fails the run.
	setStatus := func(status model.JobStatus) {
		if input.JobID == "" {
			return
		}
		if err := p.store.UpdateJobStatus(ctx, input.JobID, status); err != nil {
			log.Warn("pipeline: failed to update job status", zap.Error(err))
		}
	}
	failJob := func(reason string) {
		if input.JobID == "" {
			return
		}
		if err := p.store.UpdateJobError(ctx, input.JobID, reason); err != nil {
			log.Warn("pipeline: failed to record job error", zap.Error(err))
		}
	}

	state = p.validate(state)
	if state.Failed() {
		failJob(state.Error)
		log.Error("pipeline: validation failed", zap.String("error", state.Error))
		return state
	}
	setStatus(state.Status)

	state = p.research(ctx, state)
	if state.Failed() {
		failJob(state.Error)
		log.Error("pipeline: research failed", zap.String("error", state.Error))
		return state
	}
	setStatus(state.Status)

	state = p.classify(ctx, state)
	setStatus(state.Status)

	state = p.searchCompetitors(ctx, state)
	setStatus(state.Status)

	// Gap analysis and internal ops are independent analyses over the same
	// report and vertical; correlate waits for both.
	if p.cfg.Pipeline.ParallelOps {
		base := state
		var gapState, opsState model.WorkflowState
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			gapState = p.analyzeGaps(gctx, base)
			return nil
		})
		g.Go(func() error {
			opsState = p.researchInternalOps(gctx, base)
			return nil
		})
		_ = g.Wait()
		state.Gaps = gapState.Gaps
		state.InternalOps = opsState.InternalOps
	} else {
		state = p.analyzeGaps(ctx, state)
		state = p.researchInternalOps(ctx, state)
	}

	state = p.correlate(ctx, state)
	state = p.finalize(ctx, state)
	setStatus(state.Status)

	log.Info("pipeline: research complete",
		zap.String("vertical", state.Vertical),
		zap.Int("case_studies", len(state.CaseStudies)),
		zap.Int("correlations", len(state.Correlations)),
	)
	return state
}

// generate runs one oracle round-trip and returns the response text.
func (p *Pipeline) generate(ctx context.Context, stage, prompt string) (string, error) {
	resp, err := p.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.Model,
		MaxTokens: p.cfg.Anthropic.MaxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, stage)
	return resp.Text(), nil
}
