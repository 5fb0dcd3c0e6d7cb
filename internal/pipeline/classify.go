package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

const classifyPrompt = `Based on the following company information, classify the company into one of these industry verticals:

Company: %s
Overview: %s

Available verticals:
%s

Respond with ONLY the vertical name (e.g., "healthcare" or "finance"), nothing else.`

// classifyByKeywords scores each vertical by keyword hits over the client
// name and overview. Returns ("", false) when nothing matches.
func classifyByKeywords(registry *model.VerticalRegistry, clientName, overview string) (string, bool) {
	text := strings.ToLower(clientName + " " + overview)

	best := ""
	bestScore := 0
	for _, def := range registry.Defs() {
		score := 0
		for _, kw := range def.Keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best = def.Name
			bestScore = score
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return best, true
}

// verticalOptions renders the registry as the bullet list embedded in the
// classification prompt.
func verticalOptions(registry *model.VerticalRegistry) string {
	var b strings.Builder
	for _, def := range registry.Defs() {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// classify assigns an industry vertical. A keyword pre-pass runs first so
// an oracle failure can still land on a sensible vertical; any remaining
// failure degrades to "other". Never fatal.
func (p *Pipeline) classify(ctx context.Context, state model.WorkflowState) model.WorkflowState {
	if state.Failed() {
		return state
	}
	log := zap.L().With(zap.String("client", state.ClientName))

	overview := ""
	if state.Report != nil {
		overview = state.Report.CompanyOverview
	}
	keywordResult, keywordOK := classifyByKeywords(p.verticals, state.ClientName, overview)

	prompt := fmt.Sprintf(classifyPrompt, state.ClientName, overview, verticalOptions(p.verticals))
	raw, err := p.generate(ctx, "classify", prompt)
	if err != nil {
		if keywordOK {
			log.Warn("pipeline: LLM classification failed, using keyword match",
				zap.String("vertical", keywordResult), zap.Error(err))
			state.Vertical = keywordResult
		} else {
			log.Warn("pipeline: classification failed, defaulting to other", zap.Error(err))
			state.Vertical = model.VerticalOther
		}
		state.Status = model.JobStatusCompetitorSearch
		return state
	}

	vertical := strings.ToLower(strings.TrimSpace(raw))
	if !p.verticals.Valid(vertical) {
		log.Warn("pipeline: unknown vertical from classifier", zap.String("vertical", vertical))
		vertical = model.VerticalOther
	}

	state.Vertical = vertical
	state.Status = model.JobStatusCompetitorSearch
	return state
}
