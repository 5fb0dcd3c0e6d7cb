package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// cleanJSON strips markdown code fences and surrounding prose from an LLM
// response so the remainder parses as a single JSON object.
func cleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
		cleaned = cleaned[:idx]
	}
	cleaned = strings.TrimSpace(cleaned)

	// Extract the outermost JSON object if there is surrounding text.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	return cleaned
}

// decodeReport parses a deep-research response. Missing keys decode to zero
// values; list fields are normalized to non-nil so callers can range freely.
func decodeReport(raw string) (*model.ResearchReport, error) {
	var report model.ResearchReport
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &report); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode research report")
	}
	normalizeReport(&report)
	return &report, nil
}

// fallbackReport is the degraded research payload used when the oracle
// response cannot be parsed. The raw text survives in the overview so the
// research is not lost, only unstructured.
func fallbackReport(raw string) *model.ResearchReport {
	report := &model.ResearchReport{
		CompanyOverview: "Research completed but structured parsing failed. Raw output:\n\n" + raw,
	}
	normalizeReport(report)
	return report
}

func normalizeReport(r *model.ResearchReport) {
	if r.RecentNews == nil {
		r.RecentNews = []model.NewsItem{}
	}
	if r.DecisionMakers == nil {
		r.DecisionMakers = []model.DecisionMaker{}
	}
	if r.PainPoints == nil {
		r.PainPoints = []string{}
	}
	if r.Opportunities == nil {
		r.Opportunities = []string{}
	}
	if r.StrategicGoals == nil {
		r.StrategicGoals = []string{}
	}
	if r.KeyInitiatives == nil {
		r.KeyInitiatives = []string{}
	}
	if r.TalkingPoints == nil {
		r.TalkingPoints = []string{}
	}
}

// decodeCaseStudies parses a competitor-search response. The oracle wraps
// the list in a "case_studies" envelope.
func decodeCaseStudies(raw string) ([]model.CompetitorCaseStudy, error) {
	var envelope struct {
		CaseStudies []model.CompetitorCaseStudy `json:"case_studies"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &envelope); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode case studies")
	}
	return envelope.CaseStudies, nil
}

// decodeGapAnalysis parses a gap-analysis response.
func decodeGapAnalysis(raw string) (*model.GapAnalysis, error) {
	var gaps model.GapAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &gaps); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode gap analysis")
	}
	return &gaps, nil
}

// decodeInternalOps parses an internal-ops intelligence response.
func decodeInternalOps(raw string) (*model.InternalOpsIntel, error) {
	var ops model.InternalOpsIntel
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &ops); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode internal ops")
	}
	return &ops, nil
}

// decodeUseCases parses a use-case generation response.
func decodeUseCases(raw string) ([]model.UseCase, error) {
	var envelope struct {
		UseCases []model.UseCase `json:"use_cases"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &envelope); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode use cases")
	}
	return envelope.UseCases, nil
}

// decodeCorrelations parses a gap-correlation response. Correlations with no
// stated evidence type default to neutral.
func decodeCorrelations(raw string) ([]model.GapCorrelation, error) {
	var envelope struct {
		GapCorrelations []model.GapCorrelation `json:"gap_correlations"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &envelope); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode correlations")
	}
	for i := range envelope.GapCorrelations {
		if envelope.GapCorrelations[i].EvidenceType == "" {
			envelope.GapCorrelations[i].EvidenceType = model.EvidenceNeutral
		}
	}
	return envelope.GapCorrelations, nil
}

// bestEffort runs fn and logs any error without propagating it. All
// non-fatal persistence and side-effect boundaries go through here so the
// try-log-continue policy lives in one place.
func bestEffort(log *zap.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		log.Warn("pipeline: best-effort step failed", zap.String("step", name), zap.Error(err))
	}
}
