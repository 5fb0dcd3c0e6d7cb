package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the result:\n{\"a\": 1}\nHope that helps!",
			want: `{"a": 1}`,
		},
		{
			name: "fence with prose",
			in:   "Sure:\n```json\n{\"a\": {\"b\": 2}}\n```\n",
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "whitespace",
			in:   "  \n {\"a\": 1} \n ",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestDecodeReport(t *testing.T) {
	report, err := decodeReport("```json\n" + validReportJSON + "\n```")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp builds industrial automation software.", report.CompanyOverview)
	assert.Equal(t, 1995, report.FoundedYear)
	assert.Equal(t, []string{"manual workflows", "data silos"}, report.PainPoints)
	// Missing list keys decode to empty, never nil.
	assert.NotNil(t, report.RecentNews)
	assert.NotNil(t, report.DecisionMakers)
	assert.NotNil(t, report.StrategicGoals)
}

func TestDecodeReport_Invalid(t *testing.T) {
	_, err := decodeReport("the oracle rambled instead of answering")
	assert.Error(t, err)
}

func TestFallbackReport(t *testing.T) {
	report := fallbackReport("raw oracle text")
	assert.Contains(t, report.CompanyOverview, "structured parsing failed")
	assert.Contains(t, report.CompanyOverview, "raw oracle text")
	assert.NotNil(t, report.PainPoints)
	assert.Empty(t, report.PainPoints)
}

func TestDecodeCaseStudies(t *testing.T) {
	studies, err := decodeCaseStudies(validStudiesJSON)
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, "Globex", studies[0].CompetitorName)
	assert.InDelta(t, 0.9, studies[0].RelevanceScore, 0.001)
}

func TestDecodeCaseStudies_MissingEnvelope(t *testing.T) {
	studies, err := decodeCaseStudies(`{"something_else": true}`)
	require.NoError(t, err)
	assert.Empty(t, studies)
}

func TestDecodeGapAnalysis(t *testing.T) {
	gaps, err := decodeGapAnalysis(validGapsJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"no cloud infrastructure"}, gaps.TechnologyGaps)
	assert.InDelta(t, 0.8, gaps.ConfidenceScore, 0.001)
}

func TestDecodeInternalOps(t *testing.T) {
	ops, err := decodeInternalOps(validOpsJSON)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, ops.EmployeeSentiment.OverallRating, 0.001)
	assert.Equal(t, 12, ops.JobPostings.TotalOpenings)
	assert.Equal(t, "last_30_days", ops.DataFreshness)
}

func TestDecodeCorrelations(t *testing.T) {
	correlations, err := decodeCorrelations(validCorrelationsJSON)
	require.NoError(t, err)
	require.Len(t, correlations, 1)
	assert.Equal(t, model.EvidenceSupporting, correlations[0].EvidenceType)
}

func TestDecodeCorrelations_DefaultsEvidenceType(t *testing.T) {
	correlations, err := decodeCorrelations(`{"gap_correlations": [{"gap_type": "process", "description": "x"}]}`)
	require.NoError(t, err)
	require.Len(t, correlations, 1)
	assert.Equal(t, model.EvidenceNeutral, correlations[0].EvidenceType)
}
