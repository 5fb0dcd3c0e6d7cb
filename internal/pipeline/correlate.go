package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const gapCorrelationPrompt = `You are a sales intelligence analyst. Your task is to cross-reference identified gaps in a target company with internal operations intelligence to provide evidence-backed insights.

Target Company: %s
Industry Vertical: %s

## IDENTIFIED GAPS

### Technology Gaps:
%s

### Capability Gaps:
%s

### Process Gaps:
%s

## INTERNAL OPERATIONS INTELLIGENCE

### Employee Sentiment:
Overall Rating: %.1f/5.0
Trend: %s
Positive Themes: %s
Negative Themes: %s

### Job Postings:
Total Openings: %d
Key Departments Hiring: %s
Skills Sought: %s
Urgency Signals: %s
Hiring Insights: %s

### News & Social Sentiment:
News Sentiment: %s
Key Topics: %s

### Key Internal Insights:
%s

## YOUR TASK

For each identified gap, analyze the internal ops intelligence to find:
1. Supporting evidence - signals that confirm or reinforce the gap
2. Contradicting evidence - signals that suggest the gap may not exist or is being addressed
3. Sales implications - how to use this information in sales conversations

Respond with valid JSON matching this structure:
{
    "gap_correlations": [
        {
            "gap_type": "technology",
            "description": "The specific gap being analyzed",
            "evidence": "Internal ops evidence that relates to this gap",
            "evidence_type": "supporting",
            "confidence": 0.85,
            "sales_implication": "How to leverage this in sales conversations"
        }
    ],
    "overall_confidence": 0.75,
    "analysis_summary": "Brief summary of the correlation analysis"
}

IMPORTANT:
- Analyze EACH gap from all three categories (technology, capability, process)
- evidence_type must be: "supporting", "contradicting", or "neutral"
- confidence should be 0.0-1.0 based on how strong the correlation is
- Focus on actionable sales implications
- If no clear evidence exists for a gap, note it with confidence of 0.3 or less
- Respond ONLY with valid JSON`

func bulletList(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	return strings.Join(lines, "\n")
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// correlate cross-references gap findings with internal-ops evidence. When
// either input is missing the stage is a designed no-op that yields an empty
// list without an oracle call; oracle failure degrades to the same.
func (p *Pipeline) correlate(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName))

	if state.Gaps == nil || state.InternalOps == nil {
		log.Info("pipeline: skipping gap correlation, missing gap analysis or internal ops")
		state.Correlations = []model.GapCorrelation{}
		return state
	}

	gaps := state.Gaps
	ops := state.InternalOps
	departments, _ := json.Marshal(ops.JobPostings.DepartmentsHiring)

	prompt := fmt.Sprintf(gapCorrelationPrompt,
		state.ClientName,
		state.Vertical,
		bulletList(gaps.TechnologyGaps, "None identified"),
		bulletList(gaps.CapabilityGaps, "None identified"),
		bulletList(gaps.ProcessGaps, "None identified"),
		ops.EmployeeSentiment.OverallRating,
		ops.EmployeeSentiment.Trend,
		joinOr(ops.EmployeeSentiment.PositiveThemes, "None noted"),
		joinOr(ops.EmployeeSentiment.NegativeThemes, "None noted"),
		ops.JobPostings.TotalOpenings,
		string(departments),
		joinOr(ops.JobPostings.SkillsSought, "None noted"),
		joinOr(ops.JobPostings.UrgencySignals, "None noted"),
		ops.JobPostings.Insights,
		ops.NewsSentiment.OverallSentiment,
		joinOr(ops.NewsSentiment.Topics, "None noted"),
		bulletList(ops.KeyInsights, "None available"),
	)

	raw, err := p.generate(ctx, "correlate", prompt)
	if err != nil {
		log.Warn("pipeline: gap correlation failed", zap.Error(err))
		state.Correlations = []model.GapCorrelation{}
		return state
	}

	correlations, err := decodeCorrelations(raw)
	if err != nil {
		log.Warn("pipeline: gap correlation response was not valid JSON", zap.Error(err))
		correlations = []model.GapCorrelation{}
	}
	if correlations == nil {
		correlations = []model.GapCorrelation{}
	}

	state.Correlations = correlations
	return state
}
