package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/registry"
)

func TestClassifyByKeywords(t *testing.T) {
	verticals := registry.Default()

	tests := []struct {
		name     string
		client   string
		overview string
		want     string
		wantOK   bool
	}{
		{
			name:     "healthcare keywords",
			client:   "Mercy Hospital",
			overview: "A regional hospital network providing patient care.",
			want:     "healthcare",
			wantOK:   true,
		},
		{
			name:     "finance keywords",
			client:   "First National Bank",
			overview: "Retail banking and wealth management.",
			want:     "finance",
			wantOK:   true,
		},
		{
			name:     "no match",
			client:   "Zzyzx Holdings",
			overview: "",
			wantOK:   false,
		},
		{
			name:     "highest score wins",
			client:   "Acme",
			overview: "A software platform with cloud analytics and a small retail arm.",
			want:     "technology",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classifyByKeywords(verticals, tt.client, tt.overview)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func baseState() model.WorkflowState {
	return model.WorkflowState{
		ClientName: "Acme Corp",
		Status:     model.JobStatusClassifying,
		Report: &model.ResearchReport{
			CompanyOverview: "Acme builds manufacturing equipment for factories.",
		},
	}
}

func TestClassify_UsesLLMResult(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("manufacturing"), nil)

	p, _ := testPipeline(t, oracle)
	state := p.classify(context.Background(), baseState())

	assert.Equal(t, "manufacturing", state.Vertical)
	assert.Equal(t, model.JobStatusCompetitorSearch, state.Status)
}

func TestClassify_UnknownVerticalCoercedToOther(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("underwater basket weaving"), nil)

	p, _ := testPipeline(t, oracle)
	state := p.classify(context.Background(), baseState())

	assert.Equal(t, model.VerticalOther, state.Vertical)
	assert.Equal(t, model.JobStatusCompetitorSearch, state.Status)
}

func TestClassify_OracleErrorFallsBackToKeywords(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exceeded"))

	p, _ := testPipeline(t, oracle)
	state := p.classify(context.Background(), baseState())

	// The overview mentions manufacturing and factories.
	assert.Equal(t, "manufacturing", state.Vertical)
	assert.Equal(t, model.JobStatusCompetitorSearch, state.Status)
}

func TestClassify_OracleErrorNoKeywordsDefaultsToOther(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exceeded"))

	p, _ := testPipeline(t, oracle)
	state := baseState()
	state.ClientName = "Zzyzx Holdings"
	state.Report = &model.ResearchReport{}
	state = p.classify(context.Background(), state)

	assert.Equal(t, model.VerticalOther, state.Vertical)
}

func TestClassify_FailedStatePassesThrough(t *testing.T) {
	oracle := new(mockOracle)

	p, _ := testPipeline(t, oracle)
	failed := baseState().Fail("earlier failure")
	state := p.classify(context.Background(), failed)

	assert.Equal(t, failed, state)
	oracle.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestClassify_NormalizesCaseAndWhitespace(t *testing.T) {
	oracle := new(mockOracle)
	oracle.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("  Manufacturing\n"), nil)

	p, _ := testPipeline(t, oracle)
	state := p.classify(context.Background(), baseState())

	assert.Equal(t, "manufacturing", state.Vertical)
}
