package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const deepResearchPrompt = `You are a deep research assistant conducting comprehensive prospect research.

Given the following client information:
- Client Name: %s
- Past Sales History: %s

Conduct thorough research and provide a comprehensive analysis. Your response MUST be valid JSON matching this exact structure:

{
    "company_overview": "Comprehensive overview of the company, its business model, products/services, market position",
    "founded_year": 2000,
    "headquarters": "City, State/Country",
    "employee_count": "1,000-5,000",
    "annual_revenue": "$500M - $1B",
    "website": "https://example.com",
    "recent_news": [
        {
            "title": "News headline",
            "summary": "Brief summary of the news",
            "date": "2024-01-15",
            "source": "News source name",
            "url": "https://source.com/article"
        }
    ],
    "decision_makers": [
        {
            "name": "Full Name",
            "title": "Job Title",
            "background": "Brief professional background",
            "linkedin_url": "https://linkedin.com/in/..."
        }
    ],
    "pain_points": [
        "Pain point 1: description of business challenge or issue",
        "Pain point 2: another challenge they face"
    ],
    "opportunities": [
        "Opportunity 1: area where AI/technology could help",
        "Opportunity 2: another potential value-add"
    ],
    "digital_maturity": "nascent|developing|maturing|advanced|leading",
    "ai_footprint": "Description of their current AI/ML usage and capabilities",
    "ai_adoption_stage": "exploring|experimenting|implementing|scaling|optimizing",
    "strategic_goals": [
        "Strategic goal 1",
        "Strategic goal 2"
    ],
    "key_initiatives": [
        "Current initiative or transformation project 1",
        "Initiative 2"
    ],
    "talking_points": [
        "Specific talking point for sales conversation 1",
        "Talking point 2 with personalized angle"
    ]
}

IMPORTANT:
- Respond ONLY with valid JSON, no additional text
- Include 3-5 items for each list field where possible
- Use "unknown" for fields you cannot determine
- For digital_maturity use one of: nascent, developing, maturing, advanced, leading
- For ai_adoption_stage use one of: exploring, experimenting, implementing, scaling, optimizing
- Be specific and actionable in pain points, opportunities, and talking points`

// research runs the primary deep-research call. An oracle error here is
// fatal; a parse failure degrades to a fallback report carrying the raw
// text, because the research itself still happened.
func (p *Pipeline) research(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName))

	salesHistory := state.SalesHistory
	if salesHistory == "" {
		salesHistory = "No sales history provided"
	}

	prompt := fmt.Sprintf(deepResearchPrompt, state.ClientName, salesHistory)
	if state.PromptOverride != "" {
		prompt = state.PromptOverride
	}

	raw, err := p.generate(ctx, "research", prompt)
	if err != nil {
		log.Error("pipeline: deep research failed", zap.Error(err))
		return state.Fail("deep research failed: " + err.Error())
	}

	report, err := decodeReport(raw)
	if err != nil {
		log.Warn("pipeline: research response was not valid JSON, keeping raw text", zap.Error(err))
		report = fallbackReport(raw)
	}

	state.Report = report
	state.Status = model.JobStatusClassifying
	return state
}
