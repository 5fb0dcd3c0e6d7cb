package model

// GapAnalysis is the structured output of the gap-analysis stage.
type GapAnalysis struct {
	TechnologyGaps  []string `json:"technology_gaps"`
	CapabilityGaps  []string `json:"capability_gaps"`
	ProcessGaps     []string `json:"process_gaps"`
	Recommendations []string `json:"recommendations"`
	PriorityAreas   []string `json:"priority_areas"`
	ConfidenceScore float64  `json:"confidence_score"`
	AnalysisNotes   string   `json:"analysis_notes"`
}

// EvidenceType classifies how internal-ops evidence relates to a gap.
type EvidenceType string

const (
	EvidenceSupporting    EvidenceType = "supporting"
	EvidenceContradicting EvidenceType = "contradicting"
	EvidenceNeutral       EvidenceType = "neutral"
)

// GapCorrelation cross-references one identified gap with internal-ops
// evidence, produced by the correlate stage.
type GapCorrelation struct {
	GapType          string       `json:"gap_type"` // technology, capability, process
	Description      string       `json:"description"`
	Evidence         string       `json:"evidence"`
	EvidenceType     EvidenceType `json:"evidence_type"`
	Confidence       float64      `json:"confidence"`
	SalesImplication string       `json:"sales_implication"`
}

// CompetitorCaseStudy is one competitor AI case study surfaced by the
// competitor-search stage. A job owns zero or more of them.
type CompetitorCaseStudy struct {
	ID             string   `json:"id,omitempty"`
	JobID          string   `json:"job_id,omitempty"`
	CompetitorName string   `json:"competitor_name"`
	Vertical       string   `json:"vertical"`
	CaseStudyTitle string   `json:"case_study_title"`
	Summary        string   `json:"summary"`
	Technologies   []string `json:"technologies_used"`
	Outcomes       []string `json:"outcomes"`
	SourceURL      string   `json:"source_url"`
	RelevanceScore float64  `json:"relevance_score"`
}
