package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_job":        `INSERT INTO jobs (id, client_name, sales_history, prompt_override, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"update_job_status": `UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_job":           `SELECT id, client_name, sales_history, prompt_override, vertical, status, error, created_at, updated_at FROM jobs WHERE id = $1`,
	"upsert_report":     `INSERT INTO reports (job_id, data, updated_at) VALUES ($1, $2, $3) ON CONFLICT (job_id) DO UPDATE SET data = $2, updated_at = $3`,
	"get_report":        `SELECT data FROM reports WHERE job_id = $1`,
	"get_iteration":     `SELECT id, project_id, sequence, name, sales_history, prompt_override, status, inherited_context, job_id, created_at FROM iterations WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	client_name     TEXT NOT NULL,
	sales_history   TEXT NOT NULL DEFAULT '',
	prompt_override TEXT NOT NULL DEFAULT '',
	vertical        TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'pending',
	error           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_client_name ON jobs(client_name);

CREATE TABLE IF NOT EXISTS reports (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS gap_analyses (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS internal_ops (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS case_studies (
	id       TEXT PRIMARY KEY,
	job_id   TEXT NOT NULL REFERENCES jobs(id),
	position INTEGER NOT NULL,
	data     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_case_studies_job_id ON case_studies(job_id);

CREATE TABLE IF NOT EXISTS gap_correlations (
	id       TEXT PRIMARY KEY,
	job_id   TEXT NOT NULL REFERENCES jobs(id),
	position INTEGER NOT NULL,
	data     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gap_correlations_job_id ON gap_correlations(job_id);

CREATE TABLE IF NOT EXISTS use_cases (
	id                TEXT PRIMARY KEY,
	job_id            TEXT NOT NULL REFERENCES jobs(id),
	title             TEXT NOT NULL,
	priority          TEXT NOT NULL DEFAULT 'medium',
	impact_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	feasibility_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	data              JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (job_id, title)
);

CREATE INDEX IF NOT EXISTS idx_use_cases_job_id ON use_cases(job_id);
CREATE INDEX IF NOT EXISTS idx_use_cases_priority ON use_cases(job_id, priority);

CREATE TABLE IF NOT EXISTS personas (
	id     TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES jobs(id),
	data   JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personas_job_id ON personas(job_id);

CREATE TABLE IF NOT EXISTS projects (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	client_name  TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	context_mode TEXT NOT NULL DEFAULT 'accumulate',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS iterations (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL REFERENCES projects(id),
	sequence          INTEGER NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	sales_history     TEXT NOT NULL DEFAULT '',
	prompt_override   TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'pending',
	inherited_context JSONB,
	job_id            TEXT REFERENCES jobs(id),
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (project_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_iterations_project ON iterations(project_id, sequence);

CREATE TABLE IF NOT EXISTS work_products (
	id                  TEXT PRIMARY KEY,
	project_id          TEXT NOT NULL REFERENCES projects(id),
	target_kind         TEXT NOT NULL,
	target_id           TEXT NOT NULL,
	source_iteration_id TEXT,
	category            TEXT NOT NULL DEFAULT '',
	starred             BOOLEAN NOT NULL DEFAULT false,
	title               TEXT NOT NULL DEFAULT '',
	pitch               TEXT NOT NULL DEFAULT '',
	value_proposition   TEXT NOT NULL DEFAULT '',
	notes               TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_work_products_starred ON work_products(project_id, starred);

CREATE TABLE IF NOT EXISTS annotations (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id),
	target_kind TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_annotations_project_id ON annotations(project_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, clientName, salesHistory, promptOverride string) (*model.ResearchJob, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, client_name, sales_history, prompt_override, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, clientName, salesHistory, promptOverride, string(model.JobStatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
	}

	return &model.ResearchJob{
		ID:             id,
		ClientName:     clientName,
		SalesHistory:   salesHistory,
		PromptOverride: promptOverride,
		Status:         model.JobStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job status %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) UpdateJobError(ctx context.Context, jobID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.JobStatusFailed), errMsg, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job error %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) SetJobVertical(ctx context.Context, jobID, vertical string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET vertical = $1, updated_at = $2 WHERE id = $3`,
		vertical, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set job vertical %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	var j model.ResearchJob
	err := s.pool.QueryRow(ctx,
		`SELECT id, client_name, sales_history, prompt_override, vertical, status, error, created_at, updated_at FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&j.ID, &j.ClientName, &j.SalesHistory, &j.PromptOverride, &j.Vertical, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", jobID)
	}
	return &j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.ResearchJob, error) {
	query := `SELECT id, client_name, sales_history, prompt_override, vertical, status, error, created_at, updated_at FROM jobs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.ClientName != "" {
		query += fmt.Sprintf(` AND client_name = $%d`, argIdx)
		args = append(args, filter.ClientName)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.ResearchJob
	for rows.Next() {
		var j model.ResearchJob
		if err := rows.Scan(&j.ID, &j.ClientName, &j.SalesHistory, &j.PromptOverride, &j.Vertical, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

// upsertPayload writes a single-row-per-job JSON payload table.
func (s *PostgresStore) upsertPayload(ctx context.Context, table, jobID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal %s", table)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (job_id, data, updated_at) VALUES ($1, $2, $3) ON CONFLICT (job_id) DO UPDATE SET data = $2, updated_at = $3`,
		table,
	)
	_, err = s.pool.Exec(ctx, query, jobID, data, time.Now().UTC())
	return eris.Wrapf(err, "postgres: upsert %s for job %s", table, jobID)
}

// getPayload reads a single-row-per-job JSON payload; missing rows yield no
// error and leave dest untouched, with found=false.
func (s *PostgresStore) getPayload(ctx context.Context, table, jobID string, dest any) (bool, error) {
	var data []byte
	query := fmt.Sprintf(`SELECT data FROM %s WHERE job_id = $1`, table)
	err := s.pool.QueryRow(ctx, query, jobID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, eris.Wrapf(err, "postgres: get %s for job %s", table, jobID)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, eris.Wrapf(err, "postgres: unmarshal %s", table)
	}
	return true, nil
}

func (s *PostgresStore) UpsertReport(ctx context.Context, jobID string, report *model.ResearchReport) error {
	return s.upsertPayload(ctx, "reports", jobID, report)
}

func (s *PostgresStore) UpsertGapAnalysis(ctx context.Context, jobID string, gaps *model.GapAnalysis) error {
	return s.upsertPayload(ctx, "gap_analyses", jobID, gaps)
}

func (s *PostgresStore) UpsertInternalOps(ctx context.Context, jobID string, ops *model.InternalOpsIntel) error {
	return s.upsertPayload(ctx, "internal_ops", jobID, ops)
}

func (s *PostgresStore) GetReport(ctx context.Context, jobID string) (*model.ResearchReport, error) {
	var r model.ResearchReport
	found, err := s.getPayload(ctx, "reports", jobID, &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) GetGapAnalysis(ctx context.Context, jobID string) (*model.GapAnalysis, error) {
	var g model.GapAnalysis
	found, err := s.getPayload(ctx, "gap_analyses", jobID, &g)
	if err != nil || !found {
		return nil, err
	}
	return &g, nil
}

func (s *PostgresStore) GetInternalOps(ctx context.Context, jobID string) (*model.InternalOpsIntel, error) {
	var o model.InternalOpsIntel
	found, err := s.getPayload(ctx, "internal_ops", jobID, &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

// replaceJSONRows deletes a job's rows in a position-ordered payload table and
// bulk-inserts the replacements via COPY, so repeated finalize is idempotent.
func (s *PostgresStore) replaceJSONRows(ctx context.Context, table, jobID string, payloads []any) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE job_id = $1`, table), jobID); err != nil {
		return eris.Wrapf(err, "postgres: clear %s for job %s", table, jobID)
	}

	rows := make([][]any, 0, len(payloads))
	for i, p := range payloads {
		data, err := json.Marshal(p)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal %s row", table)
		}
		rows = append(rows, []any{uuid.New().String(), jobID, i, data})
	}

	_, err := db.CopyFrom(ctx, s.pool, table, []string{"id", "job_id", "position", "data"}, rows)
	return err
}

func (s *PostgresStore) listJSONRows(ctx context.Context, table, jobID string, scanInto func([]byte) error) error {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE job_id = $1 ORDER BY position`, table),
		jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: list %s", table)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return eris.Wrapf(err, "postgres: scan %s row", table)
		}
		if err := scanInto(data); err != nil {
			return eris.Wrapf(err, "postgres: unmarshal %s row", table)
		}
	}
	return eris.Wrapf(rows.Err(), "postgres: list %s iterate", table)
}

func (s *PostgresStore) ReplaceCaseStudies(ctx context.Context, jobID string, studies []model.CompetitorCaseStudy) error {
	payloads := make([]any, len(studies))
	for i := range studies {
		if studies[i].ID == "" {
			studies[i].ID = uuid.New().String()
		}
		studies[i].JobID = jobID
		payloads[i] = studies[i]
	}
	return s.replaceJSONRows(ctx, "case_studies", jobID, payloads)
}

func (s *PostgresStore) ListCaseStudies(ctx context.Context, jobID string) ([]model.CompetitorCaseStudy, error) {
	var studies []model.CompetitorCaseStudy
	err := s.listJSONRows(ctx, "case_studies", jobID, func(data []byte) error {
		var cs model.CompetitorCaseStudy
		if err := json.Unmarshal(data, &cs); err != nil {
			return err
		}
		studies = append(studies, cs)
		return nil
	})
	return studies, err
}

func (s *PostgresStore) ReplaceCorrelations(ctx context.Context, jobID string, correlations []model.GapCorrelation) error {
	payloads := make([]any, len(correlations))
	for i := range correlations {
		payloads[i] = correlations[i]
	}
	return s.replaceJSONRows(ctx, "gap_correlations", jobID, payloads)
}

func (s *PostgresStore) ListCorrelations(ctx context.Context, jobID string) ([]model.GapCorrelation, error) {
	var correlations []model.GapCorrelation
	err := s.listJSONRows(ctx, "gap_correlations", jobID, func(data []byte) error {
		var gc model.GapCorrelation
		if err := json.Unmarshal(data, &gc); err != nil {
			return err
		}
		correlations = append(correlations, gc)
		return nil
	})
	return correlations, err
}

func (s *PostgresStore) ReplacePersonas(ctx context.Context, jobID string, personas []model.Persona) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM personas WHERE job_id = $1`, jobID); err != nil {
		return eris.Wrapf(err, "postgres: clear personas for job %s", jobID)
	}

	rows := make([][]any, 0, len(personas))
	for i := range personas {
		if personas[i].ID == "" {
			personas[i].ID = uuid.New().String()
		}
		personas[i].JobID = jobID
		data, err := json.Marshal(personas[i])
		if err != nil {
			return eris.Wrap(err, "postgres: marshal persona")
		}
		rows = append(rows, []any{personas[i].ID, jobID, data})
	}

	_, err := db.CopyFrom(ctx, s.pool, "personas", []string{"id", "job_id", "data"}, rows)
	return err
}

func (s *PostgresStore) UpsertUseCases(ctx context.Context, jobID string, cases []model.UseCase) error {
	rows := make([][]any, 0, len(cases))
	now := time.Now().UTC()
	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = uuid.New().String()
		}
		cases[i].JobID = jobID
		if cases[i].CreatedAt.IsZero() {
			cases[i].CreatedAt = now
		}
		data, err := json.Marshal(cases[i])
		if err != nil {
			return eris.Wrap(err, "postgres: marshal use case")
		}
		rows = append(rows, []any{
			cases[i].ID, jobID, cases[i].Title, string(cases[i].Priority),
			cases[i].ImpactScore, cases[i].FeasibilityScore, data, cases[i].CreatedAt,
		})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "use_cases",
		Columns:      []string{"id", "job_id", "title", "priority", "impact_score", "feasibility_score", "data", "created_at"},
		ConflictKeys: []string{"job_id", "title"},
		UpdateCols:   []string{"priority", "impact_score", "feasibility_score", "data"},
	}, rows)
	return err
}

func (s *PostgresStore) ListUseCases(ctx context.Context, jobID string, filter UseCaseFilter) ([]model.UseCase, error) {
	query := `SELECT data FROM use_cases WHERE job_id = $1`
	args := []any{jobID}
	argIdx := 2

	if filter.Priority != "" {
		query += fmt.Sprintf(` AND priority = $%d`, argIdx)
		args = append(args, string(filter.Priority))
		argIdx++
	}
	query += ` ORDER BY impact_score DESC, title`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list use cases")
	}
	defer rows.Close()

	var cases []model.UseCase
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan use case")
		}
		var uc model.UseCase
		if err := json.Unmarshal(data, &uc); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal use case")
		}
		cases = append(cases, uc)
	}
	return cases, eris.Wrap(rows.Err(), "postgres: list use cases iterate")
}

func (s *PostgresStore) countByJob(ctx context.Context, table, jobID string) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE job_id = $1`, table)
	err := s.pool.QueryRow(ctx, query, jobID).Scan(&count)
	return count, eris.Wrapf(err, "postgres: count %s", table)
}

func (s *PostgresStore) CountUseCases(ctx context.Context, jobID string) (int, error) {
	return s.countByJob(ctx, "use_cases", jobID)
}

func (s *PostgresStore) CountPersonas(ctx context.Context, jobID string) (int, error) {
	return s.countByJob(ctx, "personas", jobID)
}

func (s *PostgresStore) CountCaseStudies(ctx context.Context, jobID string) (int, error) {
	return s.countByJob(ctx, "case_studies", jobID)
}

func (s *PostgresStore) CreateProject(ctx context.Context, p NewProject) (*model.Project, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	mode := p.ContextMode
	if mode == "" {
		mode = model.ContextModeAccumulate
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, name, client_name, description, context_mode, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, p.Name, p.ClientName, p.Description, string(mode), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert project")
	}

	return &model.Project{
		ID:          id,
		Name:        p.Name,
		ClientName:  p.ClientName,
		Description: p.Description,
		ContextMode: mode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var p model.Project
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, client_name, description, context_mode, created_at, updated_at FROM projects WHERE id = $1`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.ClientName, &p.Description, &p.ContextMode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get project %s", projectID)
	}
	return &p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, limit int) ([]model.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, client_name, description, context_mode, created_at, updated_at FROM projects ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientName, &p.Description, &p.ContextMode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: list projects iterate")
}

func (s *PostgresStore) CreateIteration(ctx context.Context, projectID string, it NewIteration) (*model.Iteration, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var sequence int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO iterations (id, project_id, sequence, name, sales_history, prompt_override, status, created_at)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(sequence), 0) + 1 FROM iterations WHERE project_id = $2), $3, $4, $5, $6, $7)
		 RETURNING sequence`,
		id, projectID, it.Name, it.SalesHistory, it.PromptOverride, string(model.IterationStatusPending), now,
	).Scan(&sequence)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert iteration for project %s", projectID)
	}

	return &model.Iteration{
		ID:             id,
		ProjectID:      projectID,
		Sequence:       sequence,
		Name:           it.Name,
		SalesHistory:   it.SalesHistory,
		PromptOverride: it.PromptOverride,
		Status:         model.IterationStatusPending,
		CreatedAt:      now,
	}, nil
}

const iterationColumns = `id, project_id, sequence, name, sales_history, prompt_override, status, inherited_context, job_id, created_at`

func scanIteration(row pgx.Row) (*model.Iteration, error) {
	var it model.Iteration
	var contextJSON []byte
	var jobID *string

	err := row.Scan(&it.ID, &it.ProjectID, &it.Sequence, &it.Name, &it.SalesHistory, &it.PromptOverride, &it.Status, &contextJSON, &jobID, &it.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(contextJSON) > 0 {
		it.InheritedContext = &model.ContextBundle{}
		if err := json.Unmarshal(contextJSON, it.InheritedContext); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal inherited context")
		}
	}
	if jobID != nil {
		it.JobID = *jobID
	}
	return &it, nil
}

func (s *PostgresStore) GetIteration(ctx context.Context, iterationID string) (*model.Iteration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+iterationColumns+` FROM iterations WHERE id = $1`,
		iterationID,
	)
	it, err := scanIteration(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get iteration %s", iterationID)
	}
	return it, nil
}

func (s *PostgresStore) PredecessorIteration(ctx context.Context, projectID string, sequence int) (*model.Iteration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+iterationColumns+` FROM iterations
		 WHERE project_id = $1 AND sequence < $2
		 ORDER BY sequence DESC LIMIT 1`,
		projectID, sequence,
	)
	it, err := scanIteration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: predecessor iteration")
	}
	return it, nil
}

func (s *PostgresStore) ListIterationsBefore(ctx context.Context, projectID string, sequence int) ([]model.Iteration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+iterationColumns+` FROM iterations
		 WHERE project_id = $1 AND sequence < $2
		 ORDER BY sequence ASC`,
		projectID, sequence,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list iterations before")
	}
	defer rows.Close()

	var iterations []model.Iteration
	for rows.Next() {
		it, err := scanIteration(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan iteration")
		}
		iterations = append(iterations, *it)
	}
	return iterations, eris.Wrap(rows.Err(), "postgres: list iterations iterate")
}

func (s *PostgresStore) UpdateIterationStatus(ctx context.Context, iterationID string, status model.IterationStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE iterations SET status = $1 WHERE id = $2`,
		string(status), iterationID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update iteration status %s", iterationID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("iteration not found: %s", iterationID)
	}
	return nil
}

func (s *PostgresStore) SetIterationJob(ctx context.Context, iterationID, jobID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE iterations SET job_id = $1 WHERE id = $2`,
		jobID, iterationID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set iteration job %s", iterationID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("iteration not found: %s", iterationID)
	}
	return nil
}

func (s *PostgresStore) SetInheritedContext(ctx context.Context, iterationID string, bundle *model.ContextBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal inherited context")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE iterations SET inherited_context = $1 WHERE id = $2`,
		data, iterationID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set inherited context %s", iterationID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("iteration not found: %s", iterationID)
	}
	return nil
}

func (s *PostgresStore) AddWorkProduct(ctx context.Context, wp model.WorkProduct) (*model.WorkProduct, error) {
	if wp.ID == "" {
		wp.ID = uuid.New().String()
	}
	if wp.CreatedAt.IsZero() {
		wp.CreatedAt = time.Now().UTC()
	}

	var sourceIteration *string
	if wp.SourceIterationID != "" {
		sourceIteration = &wp.SourceIterationID
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO work_products (id, project_id, target_kind, target_id, source_iteration_id, category, starred, title, pitch, value_proposition, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		wp.ID, wp.ProjectID, string(wp.TargetKind), wp.TargetID, sourceIteration,
		wp.Category, wp.Starred, wp.Title, wp.Pitch, wp.ValueProposition, wp.Notes, wp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert work product")
	}
	return &wp, nil
}

func (s *PostgresStore) ListStarredWorkProducts(ctx context.Context, projectID, category string, limit int) ([]model.WorkProduct, error) {
	query := `SELECT id, project_id, target_kind, target_id, source_iteration_id, category, starred, title, pitch, value_proposition, notes, created_at
	          FROM work_products WHERE project_id = $1 AND starred`
	args := []any{projectID}
	argIdx := 2

	if category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, category)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list starred work products")
	}
	defer rows.Close()

	var products []model.WorkProduct
	for rows.Next() {
		var wp model.WorkProduct
		var sourceIteration *string
		if err := rows.Scan(&wp.ID, &wp.ProjectID, &wp.TargetKind, &wp.TargetID, &sourceIteration,
			&wp.Category, &wp.Starred, &wp.Title, &wp.Pitch, &wp.ValueProposition, &wp.Notes, &wp.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan work product")
		}
		if sourceIteration != nil {
			wp.SourceIterationID = *sourceIteration
		}
		products = append(products, wp)
	}
	return products, eris.Wrap(rows.Err(), "postgres: list starred work products iterate")
}

func (s *PostgresStore) AddAnnotation(ctx context.Context, a model.Annotation) (*model.Annotation, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO annotations (id, project_id, target_kind, target_id, text, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ProjectID, string(a.TargetKind), a.TargetID, a.Text, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert annotation")
	}
	return &a, nil
}

func (s *PostgresStore) ListAnnotations(ctx context.Context, projectID string, limit int) ([]model.Annotation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, target_kind, target_id, text, created_at, updated_at
		 FROM annotations WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list annotations")
	}
	defer rows.Close()

	var annotations []model.Annotation
	for rows.Next() {
		var a model.Annotation
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.TargetKind, &a.TargetID, &a.Text, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan annotation")
		}
		annotations = append(annotations, a)
	}
	return annotations, eris.Wrap(rows.Err(), "postgres: list annotations iterate")
}
