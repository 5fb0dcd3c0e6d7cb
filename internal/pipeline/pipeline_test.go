package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/memory"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/registry"
)

func TestRun_EmptyClientName_FailsWithoutOracleCall(t *testing.T) {
	oracle := new(mockOracle)
	p, _ := testPipeline(t, oracle)

	state := p.Run(context.Background(), JobInput{ClientName: ""})

	assert.Equal(t, model.JobStatusFailed, state.Status)
	assert.Equal(t, "client name is required", state.Error)
	oracle.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestRun_MissingAPIKey_Fails(t *testing.T) {
	oracle := new(mockOracle)
	st := testStore(t)
	cfg := testConfig()
	cfg.Anthropic.Key = ""
	p := New(cfg, st, oracle, nil, registry.Default())

	state := p.Run(context.Background(), JobInput{ClientName: "Acme Corp"})

	assert.Equal(t, model.JobStatusFailed, state.Status)
	assert.Contains(t, state.Error, "API key")
	oracle.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestRun_ResearchFailureIsFatal(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, promptContains("deep research assistant")).
		Return(nil, errors.New("oracle unavailable"))

	p, st := testPipeline(t, oracle)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "Acme Corp", "", "")
	require.NoError(t, err)

	state := p.Run(ctx, JobInput{ClientName: "Acme Corp", JobID: job.ID})

	assert.Equal(t, model.JobStatusFailed, state.Status)
	assert.Contains(t, state.Error, "deep research failed")

	stored, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "deep research failed")
	// Only the research call happened.
	oracle.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestRun_FullHappyPath(t *testing.T) {
	oracle := new(mockOracle)
	stubAllStages(oracle)

	p, st := testPipeline(t, oracle)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "Acme Corp", "bought licenses in 2023", "")
	require.NoError(t, err)

	state := p.Run(ctx, JobInput{
		ClientName:   "Acme Corp",
		SalesHistory: "bought licenses in 2023",
		JobID:        job.ID,
	})

	assert.Equal(t, model.JobStatusCompleted, state.Status)
	assert.Equal(t, "manufacturing", state.Vertical)
	require.NotNil(t, state.Report)
	assert.Equal(t, "Acme Corp builds industrial automation software.", state.Report.CompanyOverview)
	require.Len(t, state.CaseStudies, 1)
	require.NotNil(t, state.Gaps)
	require.NotNil(t, state.InternalOps)
	require.Len(t, state.Correlations, 1)

	// Everything persisted.
	stored, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, stored.Status)
	assert.Equal(t, "manufacturing", stored.Vertical)

	report, err := st.GetReport(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, state.Report.CompanyOverview, report.CompanyOverview)

	studies, err := st.ListCaseStudies(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, studies, 1)

	gaps, err := st.GetGapAnalysis(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, state.Gaps.TechnologyGaps, gaps.TechnologyGaps)

	correlations, err := st.ListCorrelations(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, correlations, 1)
}

func TestRun_ParallelOps(t *testing.T) {
	oracle := new(mockOracle)
	stubAllStages(oracle)

	st := testStore(t)
	cfg := testConfig()
	cfg.Pipeline.ParallelOps = true
	p := New(cfg, st, oracle, nil, registry.Default())

	state := p.Run(context.Background(), JobInput{ClientName: "Acme Corp"})

	assert.Equal(t, model.JobStatusCompleted, state.Status)
	assert.NotNil(t, state.Gaps)
	assert.NotNil(t, state.InternalOps)
	assert.Len(t, state.Correlations, 1)
}

func TestRun_NonJSONClassification_DegradesToOther(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, promptContains("deep research assistant")).
		Return(textResponse(validReportJSON), nil)
	// Classification rambles; remaining stages fail outright.
	oracle.On("CreateMessage", mock.Anything, promptContains("classify the company")).
		Return(textResponse("I think this company might be in manufacturing, or possibly tech."), nil)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("oracle unavailable"))

	p, _ := testPipeline(t, oracle)
	state := p.Run(context.Background(), JobInput{ClientName: "Zzyzx Holdings"})

	assert.Equal(t, model.JobStatusCompleted, state.Status)
	assert.Equal(t, model.VerticalOther, state.Vertical)
	assert.Empty(t, state.CaseStudies)
	assert.Nil(t, state.Gaps)
	assert.Nil(t, state.InternalOps)
	assert.Empty(t, state.Correlations)
}

func TestRun_NonJSONResearch_FallbackReport(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, promptContains("deep research assistant")).
		Return(textResponse("Acme Corp is a company. I could not produce JSON."), nil)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("oracle unavailable"))

	p, _ := testPipeline(t, oracle)
	state := p.Run(context.Background(), JobInput{ClientName: "Acme Corp"})

	assert.Equal(t, model.JobStatusCompleted, state.Status)
	require.NotNil(t, state.Report)
	assert.Contains(t, state.Report.CompanyOverview, "structured parsing failed")
	assert.Contains(t, state.Report.CompanyOverview, "Acme Corp is a company.")
}

func TestCorrelate_SkipsWithoutBothInputs(t *testing.T) {
	oracle := new(mockOracle)
	p, _ := testPipeline(t, oracle)
	ctx := context.Background()

	state := model.WorkflowState{
		ClientName: "Acme Corp",
		Status:     model.JobStatusGapAnalysis,
		Gaps:       &model.GapAnalysis{TechnologyGaps: []string{"gap"}},
		// InternalOps is nil.
	}
	state = p.correlate(ctx, state)
	assert.Empty(t, state.Correlations)
	assert.NotNil(t, state.Correlations)

	state = model.WorkflowState{
		ClientName:  "Acme Corp",
		Status:      model.JobStatusGapAnalysis,
		InternalOps: &model.InternalOpsIntel{},
		// Gaps is nil.
	}
	state = p.correlate(ctx, state)
	assert.Empty(t, state.Correlations)

	oracle.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestRun_MemoryCaptureFailureDoesNotFailRun(t *testing.T) {
	oracle := new(mockOracle)
	stubAllStages(oracle)

	capturer := new(mockCapturer)
	capturer.On("FromResearch", mock.Anything, mock.Anything, mock.Anything).
		Return(memory.CaptureResult{Errors: []string{"vector store down"}})

	st := testStore(t)
	p := New(testConfig(), st, oracle, capturer, registry.Default())

	ctx := context.Background()
	job, err := st.CreateJob(ctx, "Acme Corp", "", "")
	require.NoError(t, err)

	state := p.Run(ctx, JobInput{ClientName: "Acme Corp", JobID: job.ID})

	assert.Equal(t, model.JobStatusCompleted, state.Status)
	capturer.AssertExpectations(t)
}

func TestFinalize_IdempotentPerJob(t *testing.T) {
	oracle := new(mockOracle)
	p, st := testPipeline(t, oracle)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "Acme Corp", "", "")
	require.NoError(t, err)

	state := model.WorkflowState{
		ClientName:  "Acme Corp",
		JobID:       job.ID,
		Status:      model.JobStatusGapAnalysis,
		Vertical:    "manufacturing",
		Report:      &model.ResearchReport{CompanyOverview: "overview"},
		Gaps:        &model.GapAnalysis{TechnologyGaps: []string{"gap"}},
		CaseStudies: []model.CompetitorCaseStudy{{CompetitorName: "Globex", CaseStudyTitle: "t"}},
	}

	first := p.finalize(ctx, state)
	second := p.finalize(ctx, state)
	assert.Equal(t, model.JobStatusCompleted, first.Status)
	assert.Equal(t, model.JobStatusCompleted, second.Status)

	studies, err := st.ListCaseStudies(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, studies, 1)

	count, err := st.CountCaseStudies(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_PromptOverrideReplacesResearchPrompt(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, promptContains("my custom research brief")).
		Return(textResponse(validReportJSON), nil).Once()
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("oracle unavailable"))

	p, _ := testPipeline(t, oracle)
	state := p.Run(context.Background(), JobInput{
		ClientName:     "Acme Corp",
		PromptOverride: "my custom research brief",
	})

	assert.Equal(t, model.JobStatusCompleted, state.Status)
	require.NotNil(t, state.Report)
	assert.Equal(t, "Acme Corp builds industrial automation software.", state.Report.CompanyOverview)
}
