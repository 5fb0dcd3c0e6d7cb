package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const competitorSearchPrompt = `You are a competitive intelligence researcher. Find AI and technology case studies from competitors in the same industry as the target company.

Target Company: %s
Industry Vertical: %s
Company Overview: %s

Search for and identify 3-5 relevant case studies from competitors or similar companies that have successfully implemented AI solutions. Focus on:
1. Companies in the same or adjacent industries
2. Similar size or market position
3. AI/ML implementations with measurable outcomes

Respond with valid JSON matching this structure:
{
    "case_studies": [
        {
            "competitor_name": "Company Name",
            "vertical": "industry vertical",
            "case_study_title": "Title of the case study or project",
            "summary": "2-3 sentence summary of what they did and why",
            "technologies_used": ["Technology 1", "Technology 2"],
            "outcomes": ["Measurable outcome 1", "Measurable outcome 2"],
            "source_url": "https://example.com/case-study",
            "relevance_score": 0.85
        }
    ]
}

IMPORTANT:
- Include 3-5 case studies
- relevance_score should be 0.0-1.0 based on how relevant to the target company
- Focus on AI, ML, automation, and digital transformation case studies
- Be specific about technologies and outcomes
- Respond ONLY with valid JSON`

// searchCompetitors finds competitor AI case studies for the classified
// vertical. Degrades to an empty list on any failure.
func (p *Pipeline) searchCompetitors(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName), zap.String("vertical", state.Vertical))

	overview := "Not available"
	if state.Report != nil && state.Report.CompanyOverview != "" {
		overview = state.Report.CompanyOverview
	}

	prompt := fmt.Sprintf(competitorSearchPrompt, state.ClientName, state.Vertical, overview)
	raw, err := p.generate(ctx, "competitors", prompt)
	if err != nil {
		log.Warn("pipeline: competitor search failed", zap.Error(err))
		state.CaseStudies = []model.CompetitorCaseStudy{}
		state.Status = model.JobStatusGapAnalysis
		return state
	}

	studies, err := decodeCaseStudies(raw)
	if err != nil {
		log.Warn("pipeline: competitor search response was not valid JSON", zap.Error(err))
		studies = []model.CompetitorCaseStudy{}
	}
	if studies == nil {
		studies = []model.CompetitorCaseStudy{}
	}

	log.Info("pipeline: competitor search complete", zap.Int("case_studies", len(studies)))
	state.CaseStudies = studies
	state.Status = model.JobStatusGapAnalysis
	return state
}
