package model

import (
	"strconv"
	"time"
)

// ContextMode controls how a project's iterations build on each other.
type ContextMode string

const (
	ContextModeAccumulate ContextMode = "accumulate"
	ContextModeFresh      ContextMode = "fresh"
)

// Project is a named engagement wrapping an ordered sequence of iterations.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ClientName  string      `json:"client_name"`
	Description string      `json:"description,omitempty"`
	ContextMode ContextMode `json:"context_mode"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IterationStatus mirrors the pipeline's terminal states on the workspace side.
type IterationStatus string

const (
	IterationStatusPending   IterationStatus = "pending"
	IterationStatusRunning   IterationStatus = "running"
	IterationStatusCompleted IterationStatus = "completed"
	IterationStatusFailed    IterationStatus = "failed"
)

// Iteration is one research run within a project's history. Sequence is
// assigned at creation as max(existing)+1 and never changes.
type Iteration struct {
	ID               string          `json:"id"`
	ProjectID        string          `json:"project_id"`
	Sequence         int             `json:"sequence"`
	Name             string          `json:"name,omitempty"`
	SalesHistory     string          `json:"sales_history,omitempty"`
	PromptOverride   string          `json:"prompt_override,omitempty"`
	Status           IterationStatus `json:"status"`
	InheritedContext *ContextBundle  `json:"inherited_context,omitempty"`
	JobID            string          `json:"job_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Label returns the iteration's display name.
func (it Iteration) Label() string {
	if it.Name != "" {
		return it.Name
	}
	return "Iteration " + strconv.Itoa(it.Sequence)
}

// TargetKind tags what kind of artifact a work product or annotation points
// at, replacing reflective object references with an explicit union.
type TargetKind string

const (
	TargetPlay      TargetKind = "play"
	TargetPersona   TargetKind = "persona"
	TargetInsight   TargetKind = "insight"
	TargetOnePager  TargetKind = "one_pager"
	TargetCaseStudy TargetKind = "case_study"
	TargetUseCase   TargetKind = "use_case"
	TargetGap       TargetKind = "gap"
	TargetOther     TargetKind = "other"
)

// WorkProduct is a user-starred bookmark onto a generated artifact, owned by
// a project and optionally tagged with the iteration that produced it.
type WorkProduct struct {
	ID                string     `json:"id"`
	ProjectID         string     `json:"project_id"`
	TargetKind        TargetKind `json:"target_kind"`
	TargetID          string     `json:"target_id"`
	SourceIterationID string     `json:"source_iteration_id,omitempty"`
	Category          string     `json:"category"`
	Starred           bool       `json:"starred"`
	Title             string     `json:"title,omitempty"`
	Pitch             string     `json:"pitch,omitempty"`
	ValueProposition  string     `json:"value_proposition,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Annotation is a free-text user note attached to an artifact within a project.
type Annotation struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	TargetKind TargetKind `json:"target_kind"`
	TargetID   string     `json:"target_id"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
