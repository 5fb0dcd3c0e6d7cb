package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/registry"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

type stubOracle struct {
	mock.Mock
}

func (m *stubOracle) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

const stubReportJSON = `{"company_overview": "Acme overview", "pain_points": ["slow onboarding"]}`

func newTestWorkspace(t *testing.T, st store.Store, oracle anthropic.Client) *Workspace {
	t.Helper()
	cfg := &config.Config{
		Anthropic: config.AnthropicConfig{Key: "test-key", Model: "claude-sonnet-4-5-20250929", MaxTokens: 4096},
	}
	acc := NewAccumulator(st, cfg.Pipeline)
	pipe := pipeline.New(cfg, st, oracle, nil, registry.Default())
	return NewWorkspace(st, acc, pipe)
}

func TestCreateIteration_StoresInheritedContext(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)
	addCompletedIteration(t, st, proj.ID, &model.ResearchReport{
		PainPoints: []string{"slow onboarding"},
	})

	ws := newTestWorkspace(t, st, new(stubOracle))
	iter, err := ws.CreateIteration(ctx, proj.ID, store.NewIteration{Name: "second pass"})
	require.NoError(t, err)

	assert.Equal(t, 2, iter.Sequence)
	require.NotNil(t, iter.InheritedContext)
	assert.Equal(t, []string{"slow onboarding"}, iter.InheritedContext.PainPoints)

	// Persisted too.
	stored, err := st.GetIteration(ctx, iter.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InheritedContext)
	assert.Equal(t, []string{"slow onboarding"}, stored.InheritedContext.PainPoints)
}

func TestCreateIteration_FirstIterationNoContext(t *testing.T) {
	st := newTestStore(t)
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	ws := newTestWorkspace(t, st, new(stubOracle))
	iter, err := ws.CreateIteration(context.Background(), proj.ID, store.NewIteration{})
	require.NoError(t, err)

	assert.Equal(t, 1, iter.Sequence)
	assert.Nil(t, iter.InheritedContext)
}

func TestRunIteration_CompletesAndLinksJob(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	oracle := new(stubOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: stubReportJSON}},
		}, nil)

	ws := newTestWorkspace(t, st, oracle)
	iter, err := ws.CreateIteration(ctx, proj.ID, store.NewIteration{})
	require.NoError(t, err)

	ran, state, err := ws.RunIteration(ctx, iter.ID)
	require.NoError(t, err)

	assert.Equal(t, model.IterationStatusCompleted, ran.Status)
	assert.NotEmpty(t, ran.JobID)
	assert.Equal(t, model.JobStatusCompleted, state.Status)

	stored, err := st.GetIteration(ctx, iter.ID)
	require.NoError(t, err)
	assert.Equal(t, model.IterationStatusCompleted, stored.Status)
	assert.Equal(t, ran.JobID, stored.JobID)

	job, err := st.GetJob(ctx, ran.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", job.ClientName)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
}

func TestRunIteration_FailureMarksIterationFailed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	ws := newTestWorkspace(t, st, new(stubOracle))
	// Break the pipeline by clearing the API key.
	ws.pipe = pipeline.New(
		&config.Config{Anthropic: config.AnthropicConfig{}},
		st, new(stubOracle), nil, registry.Default(),
	)

	iter, err := ws.CreateIteration(ctx, proj.ID, store.NewIteration{})
	require.NoError(t, err)

	ran, state, err := ws.RunIteration(ctx, iter.ID)
	require.NoError(t, err)
	assert.Equal(t, model.IterationStatusFailed, ran.Status)
	assert.True(t, state.Failed())
}

func TestSalesHistoryWithContext(t *testing.T) {
	iter := &model.Iteration{SalesHistory: "bought licenses"}
	assert.Equal(t, "bought licenses", salesHistoryWithContext(iter))

	iter.InheritedContext = &model.ContextBundle{PainPoints: []string{"slow onboarding"}}
	combined := salesHistoryWithContext(iter)
	assert.Contains(t, combined, "bought licenses")
	assert.Contains(t, combined, "Context from prior research iterations:")
	assert.Contains(t, combined, "slow onboarding")

	iter.SalesHistory = ""
	combined = salesHistoryWithContext(iter)
	assert.Contains(t, combined, "Context from prior research iterations:")
}
