package pipeline

import (
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// validate checks the inputs before any oracle call is made. Both failures
// here are fatal: nothing downstream can run without a client name and an
// API key.
func (p *Pipeline) validate(state model.WorkflowState) model.WorkflowState {
	if strings.TrimSpace(state.ClientName) == "" {
		return state.Fail("client name is required")
	}
	if p.cfg.Anthropic.Key == "" {
		return state.Fail("anthropic API key is not configured")
	}

	state.Status = model.JobStatusResearching
	return state
}
