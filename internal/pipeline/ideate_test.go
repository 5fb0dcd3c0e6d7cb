package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

const validUseCasesJSON = `{
	"use_cases": [
		{
			"title": "Predictive maintenance",
			"description": "Forecast equipment failures",
			"business_problem": "Unplanned downtime",
			"proposed_solution": "Sensor-driven ML models",
			"expected_benefits": ["Less downtime"],
			"technologies": ["ML"],
			"priority": "high",
			"impact_score": 0.9,
			"feasibility_score": 0.7
		},
		{
			"title": "Invoice automation",
			"description": "Automate AP processing",
			"business_problem": "Manual invoice entry",
			"proposed_solution": "Document extraction",
			"priority": "",
			"impact_score": 0.6,
			"feasibility_score": 0.9
		}
	]
}`

func completedJobWithReport(t *testing.T, st store.Store) *model.ResearchJob {
	t.Helper()
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "Acme Manufacturing", "", "")
	require.NoError(t, err)
	require.NoError(t, st.SetJobVertical(ctx, job.ID, "manufacturing"))
	require.NoError(t, st.UpsertReport(ctx, job.ID, &model.ResearchReport{
		CompanyOverview: "Mid-market industrial manufacturer.",
		PainPoints:      []string{"Unplanned downtime", "Manual reporting"},
		Opportunities:   []string{"Predictive maintenance"},
		DigitalMaturity: "developing",
		AIAdoptionStage: "exploring",
	}))
	require.NoError(t, st.UpsertGapAnalysis(ctx, job.ID, &model.GapAnalysis{
		TechnologyGaps: []string{"No sensor telemetry"},
	}))
	require.NoError(t, st.UpdateJobStatus(ctx, job.ID, model.JobStatusCompleted))
	return job
}

func TestIdeate_GeneratesAndStoresUseCases(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, promptContains("AI solutions architect")).
		Return(textResponse(validUseCasesJSON), nil)

	p, st := testPipeline(t, oracle)
	job := completedJobWithReport(t, st)

	cases, err := p.Ideate(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "Predictive maintenance", cases[0].Title)
	assert.Equal(t, model.PriorityHigh, cases[0].Priority)
	assert.Equal(t, model.PriorityMedium, cases[1].Priority)
	assert.Equal(t, job.ID, cases[0].JobID)

	stored, err := st.ListUseCases(context.Background(), job.ID, store.UseCaseFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	highOnly, err := st.ListUseCases(context.Background(), job.ID, store.UseCaseFilter{Priority: model.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, highOnly, 1)
	assert.Equal(t, "Predictive maintenance", highOnly[0].Title)
}

func TestIdeate_PromptCarriesResearchContext(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, promptContains("Unplanned downtime")).
		Return(textResponse(validUseCasesJSON), nil).Once()

	p, st := testPipeline(t, oracle)
	job := completedJobWithReport(t, st)

	_, err := p.Ideate(context.Background(), job.ID)
	require.NoError(t, err)
	oracle.AssertExpectations(t)
}

func TestIdeate_RejectsIncompleteJob(t *testing.T) {
	oracle := new(mockOracle)
	p, st := testPipeline(t, oracle)

	job, err := st.CreateJob(context.Background(), "Acme", "", "")
	require.NoError(t, err)

	_, err = p.Ideate(context.Background(), job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a completed job")
	oracle.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestIdeate_DecodeFailure(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("not json at all"), nil)

	p, st := testPipeline(t, oracle)
	job := completedJobWithReport(t, st)

	_, err := p.Ideate(context.Background(), job.ID)
	require.Error(t, err)

	stored, err := st.ListUseCases(context.Background(), job.ID, store.UseCaseFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFormatGapsInline(t *testing.T) {
	assert.Equal(t, "Not analyzed", formatGapsInline(nil))
	assert.Equal(t, "Not analyzed", formatGapsInline(&model.GapAnalysis{}))
	assert.Equal(t,
		"Technology: a, b; Process: c",
		formatGapsInline(&model.GapAnalysis{
			TechnologyGaps: []string{"a", "b"},
			ProcessGaps:    []string{"c"},
		}),
	)
}
