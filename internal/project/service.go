package project

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/store"
)

// Workspace manages project iterations end to end: creation with inherited
// context, and running the research pipeline for an iteration.
type Workspace struct {
	store store.Store
	acc   *Accumulator
	pipe  *pipeline.Pipeline
}

// NewWorkspace creates a Workspace. pipe may be nil for read-only use.
func NewWorkspace(st store.Store, acc *Accumulator, pipe *pipeline.Pipeline) *Workspace {
	return &Workspace{store: st, acc: acc, pipe: pipe}
}

// CreateIteration appends a new iteration to the project and stores the
// context bundle it inherits from prior completed work.
func (w *Workspace) CreateIteration(ctx context.Context, projectID string, in store.NewIteration) (*model.Iteration, error) {
	proj, err := w.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "project: load project")
	}

	iter, err := w.store.CreateIteration(ctx, projectID, in)
	if err != nil {
		return nil, eris.Wrap(err, "project: create iteration")
	}

	bundle, err := w.acc.BuildContext(ctx, proj, iter)
	if err != nil {
		return nil, eris.Wrap(err, "project: build inherited context")
	}
	if !bundle.IsEmpty() {
		if err := w.store.SetInheritedContext(ctx, iter.ID, bundle); err != nil {
			return nil, eris.Wrap(err, "project: store inherited context")
		}
		iter.InheritedContext = bundle
	}

	return iter, nil
}

// RunIteration executes the research pipeline for an iteration, recomputing
// the inherited context only when none was stored at creation time.
func (w *Workspace) RunIteration(ctx context.Context, iterationID string) (*model.Iteration, model.WorkflowState, error) {
	iter, err := w.store.GetIteration(ctx, iterationID)
	if err != nil {
		return nil, model.WorkflowState{}, eris.Wrap(err, "project: load iteration")
	}
	proj, err := w.store.GetProject(ctx, iter.ProjectID)
	if err != nil {
		return nil, model.WorkflowState{}, eris.Wrap(err, "project: load project")
	}

	if iter.InheritedContext == nil {
		bundle, err := w.acc.BuildContext(ctx, proj, iter)
		if err != nil {
			return nil, model.WorkflowState{}, eris.Wrap(err, "project: build inherited context")
		}
		if !bundle.IsEmpty() {
			if err := w.store.SetInheritedContext(ctx, iter.ID, bundle); err != nil {
				return nil, model.WorkflowState{}, eris.Wrap(err, "project: store inherited context")
			}
			iter.InheritedContext = bundle
		}
	}

	if err := w.store.UpdateIterationStatus(ctx, iter.ID, model.IterationStatusRunning); err != nil {
		return nil, model.WorkflowState{}, eris.Wrap(err, "project: mark iteration running")
	}
	iter.Status = model.IterationStatusRunning

	job, err := w.store.CreateJob(ctx, proj.ClientName, salesHistoryWithContext(iter), iter.PromptOverride)
	if err != nil {
		return nil, model.WorkflowState{}, eris.Wrap(err, "project: create research job")
	}
	if err := w.store.SetIterationJob(ctx, iter.ID, job.ID); err != nil {
		return nil, model.WorkflowState{}, eris.Wrap(err, "project: link job to iteration")
	}
	iter.JobID = job.ID

	state := w.pipe.Run(ctx, pipeline.JobInput{
		ClientName:     proj.ClientName,
		SalesHistory:   salesHistoryWithContext(iter),
		PromptOverride: iter.PromptOverride,
		JobID:          job.ID,
	})

	final := model.IterationStatusCompleted
	if state.Failed() {
		final = model.IterationStatusFailed
	}
	if err := w.store.UpdateIterationStatus(ctx, iter.ID, final); err != nil {
		zap.L().Warn("project: failed to record iteration status",
			zap.String("iteration_id", iter.ID), zap.Error(err))
	}
	iter.Status = final

	return iter, state, nil
}

// salesHistoryWithContext appends the inherited context bundle to the
// iteration's sales history so the research prompt sees prior findings.
func salesHistoryWithContext(iter *model.Iteration) string {
	history := iter.SalesHistory
	if iter.InheritedContext == nil || iter.InheritedContext.IsEmpty() {
		return history
	}
	encoded, err := json.MarshalIndent(iter.InheritedContext, "", "  ")
	if err != nil {
		return history
	}
	if history != "" {
		history += "\n\n"
	}
	return history + "Context from prior research iterations:\n" + string(encoded)
}
