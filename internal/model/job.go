package model

import "time"

// JobStatus represents the current state of a research job.
type JobStatus string

const (
	JobStatusPending          JobStatus = "pending"
	JobStatusResearching      JobStatus = "researching"
	JobStatusClassifying      JobStatus = "classifying"
	JobStatusCompetitorSearch JobStatus = "competitor_search"
	JobStatusGapAnalysis      JobStatus = "gap_analysis"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusFailed           JobStatus = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ResearchJob tracks one pipeline run for a client.
type ResearchJob struct {
	ID             string    `json:"id"`
	ClientName     string    `json:"client_name"`
	SalesHistory   string    `json:"sales_history,omitempty"`
	PromptOverride string    `json:"prompt_override,omitempty"`
	Vertical       string    `json:"vertical,omitempty"`
	Status         JobStatus `json:"status"`
	Result         string    `json:"result,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WorkflowState is the value threaded through the pipeline stages. Each stage
// receives the previous stage's state by value and returns a new one; a state
// with Status == JobStatusFailed passes through all later stages unchanged.
type WorkflowState struct {
	// Inputs
	ClientName     string `json:"client_name"`
	SalesHistory   string `json:"sales_history,omitempty"`
	PromptOverride string `json:"prompt_override,omitempty"`
	JobID          string `json:"job_id,omitempty"`

	Status JobStatus `json:"status"`
	Error  string    `json:"error,omitempty"`

	// Stage payloads. Each is set at most once, fully or not at all.
	Report       *ResearchReport       `json:"research_report,omitempty"`
	Vertical     string                `json:"vertical,omitempty"`
	CaseStudies  []CompetitorCaseStudy `json:"competitor_case_studies,omitempty"`
	Gaps         *GapAnalysis          `json:"gap_analysis,omitempty"`
	InternalOps  *InternalOpsIntel     `json:"internal_ops,omitempty"`
	Correlations []GapCorrelation      `json:"gap_correlations,omitempty"`
}

// Failed reports whether the pipeline has reached the failed terminal state.
func (s WorkflowState) Failed() bool {
	return s.Status == JobStatusFailed
}

// Fail returns a copy of the state marked failed with a human-readable cause.
func (s WorkflowState) Fail(reason string) WorkflowState {
	s.Status = JobStatusFailed
	s.Error = reason
	return s
}

// JobFilter specifies criteria for listing research jobs.
type JobFilter struct {
	Status     JobStatus `json:"status,omitempty"`
	ClientName string    `json:"client_name,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	Offset     int       `json:"offset,omitempty"`
}
