package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/memory"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/registry"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResponse wraps a plain string as an oracle response.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// promptContains matches a CreateMessage request whose user prompt contains
// the given substring, so each stage can be stubbed independently.
func promptContains(substr string) any {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		for _, msg := range req.Messages {
			if msg.Role == "user" && strings.Contains(msg.Content, substr) {
				return true
			}
		}
		return false
	})
}

// --- Memory Capturer Mock ---

type mockCapturer struct {
	mock.Mock
}

func (m *mockCapturer) FromResearch(ctx context.Context, job *model.ResearchJob, report *model.ResearchReport) memory.CaptureResult {
	args := m.Called(ctx, job, report)
	return args.Get(0).(memory.CaptureResult)
}

// --- Fixtures ---

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Key:       "test-key",
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 4096,
		},
		Pipeline: config.PipelineConfig{},
	}
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testPipeline(t *testing.T, oracle anthropic.Client) (*Pipeline, store.Store) {
	t.Helper()
	st := testStore(t)
	return New(testConfig(), st, oracle, nil, registry.Default()), st
}

const validReportJSON = `{
	"company_overview": "Acme Corp builds industrial automation software.",
	"founded_year": 1995,
	"headquarters": "Chicago, IL",
	"website": "https://acme.example.com",
	"pain_points": ["manual workflows", "data silos"],
	"opportunities": ["process automation"],
	"digital_maturity": "developing",
	"ai_adoption_stage": "exploring",
	"talking_points": ["lead with automation ROI"]
}`

const validGapsJSON = `{
	"technology_gaps": ["no cloud infrastructure"],
	"capability_gaps": ["limited data engineering"],
	"process_gaps": ["manual reporting"],
	"recommendations": ["adopt a data platform"],
	"priority_areas": ["reporting automation"],
	"confidence_score": 0.8,
	"analysis_notes": "solid signal"
}`

const validOpsJSON = `{
	"employee_sentiment": {"overall_rating": 3.5, "trend": "stable", "negative_themes": ["legacy tooling"]},
	"job_postings": {"total_openings": 12, "skills_sought": ["Python"], "insights": "hiring data engineers"},
	"news_sentiment": {"overall_sentiment": "neutral", "topics": ["expansion"]},
	"key_insights": ["data engineering push underway"],
	"confidence_score": 0.7,
	"data_freshness": "last_30_days"
}`

const validStudiesJSON = `{
	"case_studies": [
		{
			"competitor_name": "Globex",
			"vertical": "manufacturing",
			"case_study_title": "Predictive maintenance rollout",
			"summary": "Cut downtime by a third.",
			"technologies_used": ["ML"],
			"outcomes": ["30% less downtime"],
			"relevance_score": 0.9
		}
	]
}`

const validCorrelationsJSON = `{
	"gap_correlations": [
		{
			"gap_type": "technology",
			"description": "no cloud infrastructure",
			"evidence": "hiring data engineers",
			"evidence_type": "supporting",
			"confidence": 0.85,
			"sales_implication": "lead with platform modernization"
		}
	]
}`

// stubAllStages wires one well-formed response per oracle-backed stage.
func stubAllStages(oracle *mockOracle) {
	oracle.On("CreateMessage", mock.Anything, promptContains("deep research assistant")).
		Return(textResponse(validReportJSON), nil)
	oracle.On("CreateMessage", mock.Anything, promptContains("classify the company")).
		Return(textResponse("manufacturing"), nil)
	oracle.On("CreateMessage", mock.Anything, promptContains("competitive intelligence researcher")).
		Return(textResponse(validStudiesJSON), nil)
	oracle.On("CreateMessage", mock.Anything, promptContains("sales strategy analyst")).
		Return(textResponse(validGapsJSON), nil)
	oracle.On("CreateMessage", mock.Anything, promptContains("organizational research")).
		Return(textResponse(validOpsJSON), nil)
	oracle.On("CreateMessage", mock.Anything, promptContains("cross-reference identified gaps")).
		Return(textResponse(validCorrelationsJSON), nil)
}
