package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const useCasePrompt = `You are an AI solutions architect generating use cases for a prospect.

Based on the following research:
- Company: %s
- Industry: %s
- Overview: %s
- Pain Points: %s
- Opportunities: %s
- Digital Maturity: %s
- AI Adoption Stage: %s
- Gaps: %s

Generate 3-5 high-value AI/technology use cases that address their specific needs.

Respond with valid JSON:
{
    "use_cases": [
        {
            "title": "Use case title",
            "description": "Brief description",
            "business_problem": "Specific business problem this solves",
            "proposed_solution": "Overview of the AI/tech solution",
            "expected_benefits": ["Benefit 1", "Benefit 2"],
            "technologies": ["Technology 1", "Technology 2"],
            "priority": "high|medium|low",
            "impact_score": 0.85,
            "feasibility_score": 0.75
        }
    ]
}

IMPORTANT:
- Generate 3-5 use cases prioritized by impact and feasibility
- Be specific to the company's industry and maturity level
- impact_score and feasibility_score should be 0.0-1.0
- Respond ONLY with valid JSON`

// Ideate generates use cases from a completed research job and stores them.
// Unlike the staged run, this is an explicit operation, so failures surface
// to the caller instead of degrading.
func (p *Pipeline) Ideate(ctx context.Context, jobID string) ([]model.UseCase, error) {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusCompleted {
		return nil, eris.Errorf("pipeline: job %s is %s, ideation needs a completed job", jobID, job.Status)
	}

	report, err := p.store.GetReport(ctx, jobID)
	if err != nil {
		return nil, err
	}
	gaps, err := p.store.GetGapAnalysis(ctx, jobID)
	if err != nil {
		return nil, err
	}

	vertical := job.Vertical
	if vertical == "" {
		vertical = "unknown"
	}
	overview, painPoints, opportunities := "", "Not identified", "Not identified"
	maturity, adoption := "unknown", "unknown"
	if report != nil {
		overview = report.CompanyOverview
		if len(report.PainPoints) > 0 {
			painPoints = strings.Join(head(report.PainPoints, 5), ", ")
		}
		if len(report.Opportunities) > 0 {
			opportunities = strings.Join(head(report.Opportunities, 5), ", ")
		}
		if report.DigitalMaturity != "" {
			maturity = report.DigitalMaturity
		}
		if report.AIAdoptionStage != "" {
			adoption = report.AIAdoptionStage
		}
	}

	prompt := fmt.Sprintf(useCasePrompt,
		job.ClientName,
		vertical,
		overview,
		painPoints,
		opportunities,
		maturity,
		adoption,
		formatGapsInline(gaps),
	)

	raw, err := p.generate(ctx, "ideate", prompt)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: use case generation")
	}

	cases, err := decodeUseCases(raw)
	if err != nil {
		return nil, err
	}
	for i := range cases {
		cases[i].JobID = jobID
		if cases[i].Priority == "" {
			cases[i].Priority = model.PriorityMedium
		}
	}

	if err := p.store.UpsertUseCases(ctx, jobID, cases); err != nil {
		return nil, err
	}

	zap.L().Info("use cases generated",
		zap.String("job_id", jobID),
		zap.Int("count", len(cases)),
	)
	return cases, nil
}

// head returns at most n leading items.
func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func formatGapsInline(gaps *model.GapAnalysis) string {
	if gaps == nil {
		return "Not analyzed"
	}
	var parts []string
	if len(gaps.TechnologyGaps) > 0 {
		parts = append(parts, "Technology: "+strings.Join(head(gaps.TechnologyGaps, 3), ", "))
	}
	if len(gaps.CapabilityGaps) > 0 {
		parts = append(parts, "Capability: "+strings.Join(head(gaps.CapabilityGaps, 3), ", "))
	}
	if len(gaps.ProcessGaps) > 0 {
		parts = append(parts, "Process: "+strings.Join(head(gaps.ProcessGaps, 3), ", "))
	}
	if len(parts) == 0 {
		return "Not analyzed"
	}
	return strings.Join(parts, "; ")
}
