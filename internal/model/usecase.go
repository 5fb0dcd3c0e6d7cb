package model

import "time"

// Priority ranks a use case for follow-up.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// UseCase is a proposed AI/technology use case derived from a research job.
type UseCase struct {
	ID               string    `json:"id"`
	JobID            string    `json:"job_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	BusinessProblem  string    `json:"business_problem"`
	ProposedSolution string    `json:"proposed_solution"`
	ExpectedBenefits []string  `json:"expected_benefits"`
	Technologies     []string  `json:"technologies"`
	Priority         Priority  `json:"priority"`
	ImpactScore      float64   `json:"impact_score"`
	FeasibilityScore float64   `json:"feasibility_score"`
	CreatedAt        time.Time `json:"created_at"`
}

// Persona is a generated buyer persona tied to a research job. The pipeline
// core only counts personas; generation lives with the content generators.
type Persona struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
