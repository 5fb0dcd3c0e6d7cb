package model

import "time"

// IterationSummary identifies a prior iteration inside a context bundle.
type IterationSummary struct {
	Sequence   int             `json:"sequence"`
	Name       string          `json:"name"`
	ClientName string          `json:"client_name"`
	Status     IterationStatus `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ReportSummary carries the maturity-relevant slice of a prior report.
type ReportSummary struct {
	CompanyOverview string   `json:"company_overview,omitempty"`
	DigitalMaturity string   `json:"digital_maturity,omitempty"`
	AIAdoptionStage string   `json:"ai_adoption_stage,omitempty"`
	AIFootprint     string   `json:"ai_footprint,omitempty"`
	KeyInitiatives  []string `json:"key_initiatives,omitempty"`
	StrategicGoals  []string `json:"strategic_goals,omitempty"`
}

// UseCaseSummary is the context-bundle projection of a use case.
type UseCaseSummary struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	BusinessProblem  string  `json:"business_problem"`
	ImpactScore      float64 `json:"impact_score"`
	FeasibilityScore float64 `json:"feasibility_score"`
}

// PlaySummary is the context-bundle projection of a starred play.
type PlaySummary struct {
	Title             string `json:"title"`
	ElevatorPitch     string `json:"elevator_pitch,omitempty"`
	ValueProposition  string `json:"value_proposition,omitempty"`
	Notes             string `json:"notes,omitempty"`
	IterationSequence int    `json:"iteration_sequence,omitempty"`
}

// UserNote is the context-bundle projection of an annotation.
type UserNote struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ContextBundle is the set of facts carried into a new iteration from the
// project's history. Every field is omitted when empty: the bundle holds
// only present, non-empty signal.
type ContextBundle struct {
	// Immediate mode: drawn from the closest completed predecessor.
	PreviousIteration *IterationSummary `json:"previous_iteration_summary,omitempty"`
	PreviousReport    *ReportSummary    `json:"previous_report_summary,omitempty"`
	PainPoints        []string          `json:"identified_pain_points,omitempty"`
	Opportunities     []string          `json:"identified_opportunities,omitempty"`
	UseCases          []UseCaseSummary  `json:"promising_use_cases,omitempty"`

	// Cumulative mode: deduplicated across all prior iterations.
	IterationCount          int              `json:"iteration_count,omitempty"`
	CumulativePainPoints    []string         `json:"cumulative_pain_points,omitempty"`
	CumulativeOpportunities []string         `json:"cumulative_opportunities,omitempty"`
	CumulativeUseCases      []UseCaseSummary `json:"cumulative_use_cases,omitempty"`

	// Shared between modes.
	StarredPlays []PlaySummary `json:"starred_plays,omitempty"`
	UserNotes    []UserNote    `json:"user_notes,omitempty"`
}

// IsEmpty reports whether the bundle carries no signal at all.
func (b ContextBundle) IsEmpty() bool {
	return b.PreviousIteration == nil &&
		b.PreviousReport == nil &&
		len(b.PainPoints) == 0 &&
		len(b.Opportunities) == 0 &&
		len(b.UseCases) == 0 &&
		b.IterationCount == 0 &&
		len(b.CumulativePainPoints) == 0 &&
		len(b.CumulativeOpportunities) == 0 &&
		len(b.CumulativeUseCases) == 0 &&
		len(b.StarredPlays) == 0 &&
		len(b.UserNotes) == 0
}

// JobSummary identifies the research job inside an iteration snapshot.
type JobSummary struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Status     JobStatus `json:"status"`
	Vertical   string    `json:"vertical,omitempty"`
}

// ReportFields is the comparison-relevant slice of a research report.
type ReportFields struct {
	CompanyOverview string          `json:"company_overview"`
	PainPoints      []string        `json:"pain_points"`
	Opportunities   []string        `json:"opportunities"`
	DigitalMaturity string          `json:"digital_maturity"`
	AIAdoptionStage string          `json:"ai_adoption_stage"`
	TalkingPoints   []string        `json:"talking_points"`
	DecisionMakers  []DecisionMaker `json:"decision_makers"`
}

// GapFields is the comparison-relevant slice of a gap analysis.
type GapFields struct {
	TechnologyGaps  []string `json:"technology_gaps"`
	CapabilityGaps  []string `json:"capability_gaps"`
	ProcessGaps     []string `json:"process_gaps"`
	Recommendations []string `json:"recommendations"`
	PriorityAreas   []string `json:"priority_areas"`
}

// IterationSnapshot is one side of an iteration comparison.
type IterationSnapshot struct {
	ID        string          `json:"id"`
	Sequence  int             `json:"sequence"`
	Name      string          `json:"name"`
	Status    IterationStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`

	Job         *JobSummary   `json:"research_job,omitempty"`
	Report      *ReportFields `json:"report,omitempty"`
	GapAnalysis *GapFields    `json:"gap_analysis,omitempty"`

	UseCaseCount   int `json:"use_cases_count"`
	PersonaCount   int `json:"personas_count"`
	CaseStudyCount int `json:"competitor_case_studies_count"`
}

// ListDiff is the set difference between two ordered lists of findings.
// Order of the output slices is not defined.
type ListDiff struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// DiffSet holds per-finding diffs between two iterations.
type DiffSet struct {
	PainPoints    ListDiff `json:"pain_points"`
	Opportunities ListDiff `json:"opportunities"`
	TalkingPoints ListDiff `json:"talking_points"`
}

// Comparison is the full result of comparing two iterations.
type Comparison struct {
	A           IterationSnapshot `json:"iteration_a"`
	B           IterationSnapshot `json:"iteration_b"`
	Differences DiffSet           `json:"differences"`
}
