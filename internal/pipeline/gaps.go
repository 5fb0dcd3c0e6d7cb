package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const gapAnalysisPrompt = `You are a sales strategy analyst. Analyze the sales history and company information to identify technology, capability, and process gaps.

Target Company: %s
Industry Vertical: %s
Company Overview: %s

Sales History:
%s

Analyze this information to identify:
1. Technology gaps - missing or outdated technologies
2. Capability gaps - skills or competencies they lack
3. Process gaps - inefficient or missing business processes
4. Recommendations - specific solutions or approaches
5. Priority areas - where to focus first

Respond with valid JSON matching this structure:
{
    "technology_gaps": [
        "Gap 1: Description of technology gap and its business impact",
        "Gap 2: Another technology gap"
    ],
    "capability_gaps": [
        "Gap 1: Description of capability/skill gap",
        "Gap 2: Another capability gap"
    ],
    "process_gaps": [
        "Gap 1: Description of process or workflow gap",
        "Gap 2: Another process gap"
    ],
    "recommendations": [
        "Recommendation 1: Specific, actionable recommendation",
        "Recommendation 2: Another recommendation"
    ],
    "priority_areas": [
        "Priority 1: Highest priority area with rationale",
        "Priority 2: Second priority area"
    ],
    "confidence_score": 0.75,
    "analysis_notes": "Summary of analysis methodology and key findings"
}

IMPORTANT:
- Include 3-5 items for each gap category
- Be specific about business impact
- Prioritize based on potential value and feasibility
- confidence_score should be 0.0-1.0 based on how much information was available
- If sales history is minimal, focus on industry-typical gaps
- Respond ONLY with valid JSON`

// analyzeGaps identifies technology, capability, and process gaps from the
// sales history and research report. Degrades to a nil payload on failure.
func (p *Pipeline) analyzeGaps(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName))

	overview := "Not available"
	if state.Report != nil && state.Report.CompanyOverview != "" {
		overview = state.Report.CompanyOverview
	}
	salesHistory := state.SalesHistory
	if salesHistory == "" {
		salesHistory = "No sales history provided"
	}

	prompt := fmt.Sprintf(gapAnalysisPrompt, state.ClientName, state.Vertical, overview, salesHistory)
	raw, err := p.generate(ctx, "gap_analysis", prompt)
	if err != nil {
		log.Warn("pipeline: gap analysis failed", zap.Error(err))
		state.Gaps = nil
		return state
	}

	gaps, err := decodeGapAnalysis(raw)
	if err != nil {
		log.Warn("pipeline: gap analysis response was not valid JSON", zap.Error(err))
		state.Gaps = nil
		return state
	}

	state.Gaps = gaps
	return state
}
