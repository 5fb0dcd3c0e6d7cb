package store

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
)

// UseCaseFilter specifies criteria for listing use cases.
type UseCaseFilter struct {
	Priority model.Priority `json:"priority,omitempty"`
	Limit    int            `json:"limit,omitempty"`
}

// NewProject holds the caller-supplied fields for project creation.
type NewProject struct {
	Name        string            `json:"name"`
	ClientName  string            `json:"client_name"`
	Description string            `json:"description,omitempty"`
	ContextMode model.ContextMode `json:"context_mode"`
}

// NewIteration holds the caller-supplied fields for iteration creation.
// The sequence number is assigned by the store.
type NewIteration struct {
	Name           string `json:"name,omitempty"`
	SalesHistory   string `json:"sales_history,omitempty"`
	PromptOverride string `json:"prompt_override,omitempty"`
}

// Store defines the persistence interface for the research pipeline and the
// project workspace.
type Store interface {
	// Research jobs
	CreateJob(ctx context.Context, clientName, salesHistory, promptOverride string) (*model.ResearchJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error
	UpdateJobError(ctx context.Context, jobID string, errMsg string) error
	SetJobVertical(ctx context.Context, jobID, vertical string) error
	GetJob(ctx context.Context, jobID string) (*model.ResearchJob, error)
	ListJobs(ctx context.Context, filter model.JobFilter) ([]model.ResearchJob, error)

	// Stage payloads, one row per job
	UpsertReport(ctx context.Context, jobID string, report *model.ResearchReport) error
	UpsertGapAnalysis(ctx context.Context, jobID string, gaps *model.GapAnalysis) error
	UpsertInternalOps(ctx context.Context, jobID string, ops *model.InternalOpsIntel) error
	GetReport(ctx context.Context, jobID string) (*model.ResearchReport, error)
	GetGapAnalysis(ctx context.Context, jobID string) (*model.GapAnalysis, error)
	GetInternalOps(ctx context.Context, jobID string) (*model.InternalOpsIntel, error)

	// Stage payloads, many rows per job; Replace* is idempotent per job
	ReplaceCaseStudies(ctx context.Context, jobID string, studies []model.CompetitorCaseStudy) error
	ListCaseStudies(ctx context.Context, jobID string) ([]model.CompetitorCaseStudy, error)
	ReplaceCorrelations(ctx context.Context, jobID string, correlations []model.GapCorrelation) error
	ListCorrelations(ctx context.Context, jobID string) ([]model.GapCorrelation, error)

	// Use cases and personas
	UpsertUseCases(ctx context.Context, jobID string, cases []model.UseCase) error
	ListUseCases(ctx context.Context, jobID string, filter UseCaseFilter) ([]model.UseCase, error)
	ReplacePersonas(ctx context.Context, jobID string, personas []model.Persona) error
	CountUseCases(ctx context.Context, jobID string) (int, error)
	CountPersonas(ctx context.Context, jobID string) (int, error)
	CountCaseStudies(ctx context.Context, jobID string) (int, error)

	// Projects
	CreateProject(ctx context.Context, p NewProject) (*model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	ListProjects(ctx context.Context, limit int) ([]model.Project, error)

	// Iterations
	CreateIteration(ctx context.Context, projectID string, it NewIteration) (*model.Iteration, error)
	GetIteration(ctx context.Context, iterationID string) (*model.Iteration, error)
	PredecessorIteration(ctx context.Context, projectID string, sequence int) (*model.Iteration, error)
	ListIterationsBefore(ctx context.Context, projectID string, sequence int) ([]model.Iteration, error)
	UpdateIterationStatus(ctx context.Context, iterationID string, status model.IterationStatus) error
	SetIterationJob(ctx context.Context, iterationID, jobID string) error
	SetInheritedContext(ctx context.Context, iterationID string, bundle *model.ContextBundle) error

	// Work products and annotations
	AddWorkProduct(ctx context.Context, wp model.WorkProduct) (*model.WorkProduct, error)
	ListStarredWorkProducts(ctx context.Context, projectID, category string, limit int) ([]model.WorkProduct, error)
	AddAnnotation(ctx context.Context, a model.Annotation) (*model.Annotation, error)
	ListAnnotations(ctx context.Context, projectID string, limit int) ([]model.Annotation, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
