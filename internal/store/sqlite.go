package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	client_name     TEXT NOT NULL,
	sales_history   TEXT NOT NULL DEFAULT '',
	prompt_override TEXT NOT NULL DEFAULT '',
	vertical        TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'pending',
	error           TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_client_name ON jobs(client_name);

CREATE TABLE IF NOT EXISTS reports (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS gap_analyses (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS internal_ops (
	job_id     TEXT PRIMARY KEY REFERENCES jobs(id),
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS case_studies (
	id       TEXT PRIMARY KEY,
	job_id   TEXT NOT NULL REFERENCES jobs(id),
	position INTEGER NOT NULL,
	data     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_case_studies_job_id ON case_studies(job_id);

CREATE TABLE IF NOT EXISTS gap_correlations (
	id       TEXT PRIMARY KEY,
	job_id   TEXT NOT NULL REFERENCES jobs(id),
	position INTEGER NOT NULL,
	data     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gap_correlations_job_id ON gap_correlations(job_id);

CREATE TABLE IF NOT EXISTS use_cases (
	id                TEXT PRIMARY KEY,
	job_id            TEXT NOT NULL REFERENCES jobs(id),
	title             TEXT NOT NULL,
	priority          TEXT NOT NULL DEFAULT 'medium',
	impact_score      REAL NOT NULL DEFAULT 0,
	feasibility_score REAL NOT NULL DEFAULT 0,
	data              TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (job_id, title)
);

CREATE INDEX IF NOT EXISTS idx_use_cases_job_id ON use_cases(job_id);

CREATE TABLE IF NOT EXISTS personas (
	id     TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES jobs(id),
	data   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personas_job_id ON personas(job_id);

CREATE TABLE IF NOT EXISTS projects (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	client_name  TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	context_mode TEXT NOT NULL DEFAULT 'accumulate',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS iterations (
	id                TEXT PRIMARY KEY,
	project_id        TEXT NOT NULL REFERENCES projects(id),
	sequence          INTEGER NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	sales_history     TEXT NOT NULL DEFAULT '',
	prompt_override   TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'pending',
	inherited_context TEXT,
	job_id            TEXT REFERENCES jobs(id),
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
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
	starred             INTEGER NOT NULL DEFAULT 0,
	title               TEXT NOT NULL DEFAULT '',
	pitch               TEXT NOT NULL DEFAULT '',
	value_proposition   TEXT NOT NULL DEFAULT '',
	notes               TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_work_products_starred ON work_products(project_id, starred);

CREATE TABLE IF NOT EXISTS annotations (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id),
	target_kind TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_annotations_project_id ON annotations(project_id);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, clientName, salesHistory, promptOverride string) (*model.ResearchJob, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, client_name, sales_history, prompt_override, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, clientName, salesHistory, promptOverride, string(model.JobStatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert job")
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

func (s *SQLiteStore) UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job status %s", jobID)
	}
	return checkRowsAffected(res, "job", jobID)
}

func (s *SQLiteStore) UpdateJobError(ctx context.Context, jobID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.JobStatusFailed), errMsg, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job error %s", jobID)
	}
	return checkRowsAffected(res, "job", jobID)
}

func (s *SQLiteStore) SetJobVertical(ctx context.Context, jobID, vertical string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET vertical = ?, updated_at = ? WHERE id = ?`,
		vertical, time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set job vertical %s", jobID)
	}
	return checkRowsAffected(res, "job", jobID)
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	var j model.ResearchJob
	err := s.db.QueryRowContext(ctx,
		`SELECT id, client_name, sales_history, prompt_override, vertical, status, error, created_at, updated_at FROM jobs WHERE id = ?`,
		jobID,
	).Scan(&j.ID, &j.ClientName, &j.SalesHistory, &j.PromptOverride, &j.Vertical, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get job %s", jobID)
	}
	return &j, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.ResearchJob, error) {
	query := `SELECT id, client_name, sales_history, prompt_override, vertical, status, error, created_at, updated_at FROM jobs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ClientName != "" {
		query += ` AND client_name = ?`
		args = append(args, filter.ClientName)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.ResearchJob
	for rows.Next() {
		var j model.ResearchJob
		if err := rows.Scan(&j.ID, &j.ClientName, &j.SalesHistory, &j.PromptOverride, &j.Vertical, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

func (s *SQLiteStore) upsertPayload(ctx context.Context, table, jobID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s", table)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (job_id, data, updated_at) VALUES (?, ?, ?) ON CONFLICT (job_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		table,
	)
	_, err = s.db.ExecContext(ctx, query, jobID, string(data), time.Now().UTC())
	return eris.Wrapf(err, "sqlite: upsert %s for job %s", table, jobID)
}

func (s *SQLiteStore) getPayload(ctx context.Context, table, jobID string, dest any) (bool, error) {
	var data string
	query := fmt.Sprintf(`SELECT data FROM %s WHERE job_id = ?`, table)
	err := s.db.QueryRowContext(ctx, query, jobID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: get %s for job %s", table, jobID)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, eris.Wrapf(err, "sqlite: unmarshal %s", table)
	}
	return true, nil
}

func (s *SQLiteStore) UpsertReport(ctx context.Context, jobID string, report *model.ResearchReport) error {
	return s.upsertPayload(ctx, "reports", jobID, report)
}

func (s *SQLiteStore) UpsertGapAnalysis(ctx context.Context, jobID string, gaps *model.GapAnalysis) error {
	return s.upsertPayload(ctx, "gap_analyses", jobID, gaps)
}

func (s *SQLiteStore) UpsertInternalOps(ctx context.Context, jobID string, ops *model.InternalOpsIntel) error {
	return s.upsertPayload(ctx, "internal_ops", jobID, ops)
}

func (s *SQLiteStore) GetReport(ctx context.Context, jobID string) (*model.ResearchReport, error) {
	var r model.ResearchReport
	found, err := s.getPayload(ctx, "reports", jobID, &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) GetGapAnalysis(ctx context.Context, jobID string) (*model.GapAnalysis, error) {
	var g model.GapAnalysis
	found, err := s.getPayload(ctx, "gap_analyses", jobID, &g)
	if err != nil || !found {
		return nil, err
	}
	return &g, nil
}

func (s *SQLiteStore) GetInternalOps(ctx context.Context, jobID string) (*model.InternalOpsIntel, error) {
	var o model.InternalOpsIntel
	found, err := s.getPayload(ctx, "internal_ops", jobID, &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

// replaceJSONRows swaps a job's rows in a position-ordered payload table
// inside one transaction, so repeated finalize is idempotent.
func (s *SQLiteStore) replaceJSONRows(ctx context.Context, table, jobID string, payloads []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE job_id = ?`, table), jobID); err != nil {
		return eris.Wrapf(err, "sqlite: clear %s for job %s", table, jobID)
	}

	insertSQL := fmt.Sprintf(`INSERT INTO %s (id, job_id, position, data) VALUES (?, ?, ?, ?)`, table)
	for i, p := range payloads {
		data, err := json.Marshal(p)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal %s row", table)
		}
		if _, err := tx.ExecContext(ctx, insertSQL, uuid.New().String(), jobID, i, string(data)); err != nil {
			return eris.Wrapf(err, "sqlite: insert %s row", table)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func (s *SQLiteStore) listJSONRows(ctx context.Context, table, jobID string, scanInto func([]byte) error) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE job_id = ? ORDER BY position`, table),
		jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: list %s", table)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return eris.Wrapf(err, "sqlite: scan %s row", table)
		}
		if err := scanInto([]byte(data)); err != nil {
			return eris.Wrapf(err, "sqlite: unmarshal %s row", table)
		}
	}
	return eris.Wrapf(rows.Err(), "sqlite: list %s iterate", table)
}

func (s *SQLiteStore) ReplaceCaseStudies(ctx context.Context, jobID string, studies []model.CompetitorCaseStudy) error {
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

func (s *SQLiteStore) ListCaseStudies(ctx context.Context, jobID string) ([]model.CompetitorCaseStudy, error) {
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

func (s *SQLiteStore) ReplaceCorrelations(ctx context.Context, jobID string, correlations []model.GapCorrelation) error {
	payloads := make([]any, len(correlations))
	for i := range correlations {
		payloads[i] = correlations[i]
	}
	return s.replaceJSONRows(ctx, "gap_correlations", jobID, payloads)
}

func (s *SQLiteStore) ListCorrelations(ctx context.Context, jobID string) ([]model.GapCorrelation, error) {
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

func (s *SQLiteStore) ReplacePersonas(ctx context.Context, jobID string, personas []model.Persona) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM personas WHERE job_id = ?`, jobID); err != nil {
		return eris.Wrapf(err, "sqlite: clear personas for job %s", jobID)
	}

	for i := range personas {
		if personas[i].ID == "" {
			personas[i].ID = uuid.New().String()
		}
		personas[i].JobID = jobID
		data, err := json.Marshal(personas[i])
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal persona")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO personas (id, job_id, data) VALUES (?, ?, ?)`,
			personas[i].ID, jobID, string(data),
		); err != nil {
			return eris.Wrap(err, "sqlite: insert persona")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

func (s *SQLiteStore) UpsertUseCases(ctx context.Context, jobID string, cases []model.UseCase) error {
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
			return eris.Wrap(err, "sqlite: marshal use case")
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO use_cases (id, job_id, title, priority, impact_score, feasibility_score, data, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (job_id, title) DO UPDATE SET
			   priority = excluded.priority, impact_score = excluded.impact_score,
			   feasibility_score = excluded.feasibility_score, data = excluded.data`,
			cases[i].ID, jobID, cases[i].Title, string(cases[i].Priority),
			cases[i].ImpactScore, cases[i].FeasibilityScore, string(data), cases[i].CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert use case %q", cases[i].Title)
		}
	}
	return nil
}

func (s *SQLiteStore) ListUseCases(ctx context.Context, jobID string, filter UseCaseFilter) ([]model.UseCase, error) {
	query := `SELECT data FROM use_cases WHERE job_id = ?`
	args := []any{jobID}

	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(filter.Priority))
	}
	query += ` ORDER BY impact_score DESC, title`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list use cases")
	}
	defer rows.Close()

	var cases []model.UseCase
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan use case")
		}
		var uc model.UseCase
		if err := json.Unmarshal([]byte(data), &uc); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal use case")
		}
		cases = append(cases, uc)
	}
	return cases, eris.Wrap(rows.Err(), "sqlite: list use cases iterate")
}

func (s *SQLiteStore) countByJob(ctx context.Context, table, jobID string) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE job_id = ?`, table)
	err := s.db.QueryRowContext(ctx, query, jobID).Scan(&count)
	return count, eris.Wrapf(err, "sqlite: count %s", table)
}

func (s *SQLiteStore) CountUseCases(ctx context.Context, jobID string) (int, error) {
	return s.countByJob(ctx, "use_cases", jobID)
}

func (s *SQLiteStore) CountPersonas(ctx context.Context, jobID string) (int, error) {
	return s.countByJob(ctx, "personas", jobID)
}

func (s *SQLiteStore) CountCaseStudies(ctx context.Context, jobID string) (int, error) {
	return s.countByJob(ctx, "case_studies", jobID)
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p NewProject) (*model.Project, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	mode := p.ContextMode
	if mode == "" {
		mode = model.ContextModeAccumulate
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, client_name, description, context_mode, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.ClientName, p.Description, string(mode), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert project")
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

func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, client_name, description, context_mode, created_at, updated_at FROM projects WHERE id = ?`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.ClientName, &p.Description, &p.ContextMode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get project %s", projectID)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context, limit int) ([]model.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, client_name, description, context_mode, created_at, updated_at FROM projects ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientName, &p.Description, &p.ContextMode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: list projects iterate")
}

func (s *SQLiteStore) CreateIteration(ctx context.Context, projectID string, it NewIteration) (*model.Iteration, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var sequence int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO iterations (id, project_id, sequence, name, sales_history, prompt_override, status, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(sequence), 0) + 1 FROM iterations WHERE project_id = ?), ?, ?, ?, ?, ?)
		 RETURNING sequence`,
		id, projectID, projectID, it.Name, it.SalesHistory, it.PromptOverride, string(model.IterationStatusPending), now,
	).Scan(&sequence)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert iteration for project %s", projectID)
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

const sqliteIterationColumns = `id, project_id, sequence, name, sales_history, prompt_override, status, inherited_context, job_id, created_at`

func scanSQLiteIteration(row scannable) (*model.Iteration, error) {
	var it model.Iteration
	var contextJSON, jobID sql.NullString

	err := row.Scan(&it.ID, &it.ProjectID, &it.Sequence, &it.Name, &it.SalesHistory, &it.PromptOverride, &it.Status, &contextJSON, &jobID, &it.CreatedAt)
	if err != nil {
		return nil, err
	}

	if contextJSON.Valid && contextJSON.String != "" {
		it.InheritedContext = &model.ContextBundle{}
		if err := json.Unmarshal([]byte(contextJSON.String), it.InheritedContext); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal inherited context")
		}
	}
	if jobID.Valid {
		it.JobID = jobID.String
	}
	return &it, nil
}

func (s *SQLiteStore) GetIteration(ctx context.Context, iterationID string) (*model.Iteration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteIterationColumns+` FROM iterations WHERE id = ?`,
		iterationID,
	)
	it, err := scanSQLiteIteration(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get iteration %s", iterationID)
	}
	return it, nil
}

func (s *SQLiteStore) PredecessorIteration(ctx context.Context, projectID string, sequence int) (*model.Iteration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteIterationColumns+` FROM iterations
		 WHERE project_id = ? AND sequence < ?
		 ORDER BY sequence DESC LIMIT 1`,
		projectID, sequence,
	)
	it, err := scanSQLiteIteration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: predecessor iteration")
	}
	return it, nil
}

func (s *SQLiteStore) ListIterationsBefore(ctx context.Context, projectID string, sequence int) ([]model.Iteration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteIterationColumns+` FROM iterations
		 WHERE project_id = ? AND sequence < ?
		 ORDER BY sequence ASC`,
		projectID, sequence,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list iterations before")
	}
	defer rows.Close()

	var iterations []model.Iteration
	for rows.Next() {
		it, err := scanSQLiteIteration(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan iteration")
		}
		iterations = append(iterations, *it)
	}
	return iterations, eris.Wrap(rows.Err(), "sqlite: list iterations iterate")
}

func (s *SQLiteStore) UpdateIterationStatus(ctx context.Context, iterationID string, status model.IterationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE iterations SET status = ? WHERE id = ?`,
		string(status), iterationID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update iteration status %s", iterationID)
	}
	return checkRowsAffected(res, "iteration", iterationID)
}

func (s *SQLiteStore) SetIterationJob(ctx context.Context, iterationID, jobID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE iterations SET job_id = ? WHERE id = ?`,
		jobID, iterationID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set iteration job %s", iterationID)
	}
	return checkRowsAffected(res, "iteration", iterationID)
}

func (s *SQLiteStore) SetInheritedContext(ctx context.Context, iterationID string, bundle *model.ContextBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal inherited context")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE iterations SET inherited_context = ? WHERE id = ?`,
		string(data), iterationID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set inherited context %s", iterationID)
	}
	return checkRowsAffected(res, "iteration", iterationID)
}

func (s *SQLiteStore) AddWorkProduct(ctx context.Context, wp model.WorkProduct) (*model.WorkProduct, error) {
	if wp.ID == "" {
		wp.ID = uuid.New().String()
	}
	if wp.CreatedAt.IsZero() {
		wp.CreatedAt = time.Now().UTC()
	}

	var sourceIteration any
	if wp.SourceIterationID != "" {
		sourceIteration = wp.SourceIterationID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_products (id, project_id, target_kind, target_id, source_iteration_id, category, starred, title, pitch, value_proposition, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wp.ID, wp.ProjectID, string(wp.TargetKind), wp.TargetID, sourceIteration,
		wp.Category, wp.Starred, wp.Title, wp.Pitch, wp.ValueProposition, wp.Notes, wp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert work product")
	}
	return &wp, nil
}

func (s *SQLiteStore) ListStarredWorkProducts(ctx context.Context, projectID, category string, limit int) ([]model.WorkProduct, error) {
	query := `SELECT id, project_id, target_kind, target_id, source_iteration_id, category, starred, title, pitch, value_proposition, notes, created_at
	          FROM work_products WHERE project_id = ? AND starred = 1`
	args := []any{projectID}

	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list starred work products")
	}
	defer rows.Close()

	var products []model.WorkProduct
	for rows.Next() {
		var wp model.WorkProduct
		var sourceIteration sql.NullString
		if err := rows.Scan(&wp.ID, &wp.ProjectID, &wp.TargetKind, &wp.TargetID, &sourceIteration,
			&wp.Category, &wp.Starred, &wp.Title, &wp.Pitch, &wp.ValueProposition, &wp.Notes, &wp.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan work product")
		}
		if sourceIteration.Valid {
			wp.SourceIterationID = sourceIteration.String
		}
		products = append(products, wp)
	}
	return products, eris.Wrap(rows.Err(), "sqlite: list starred work products iterate")
}

func (s *SQLiteStore) AddAnnotation(ctx context.Context, a model.Annotation) (*model.Annotation, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO annotations (id, project_id, target_kind, target_id, text, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, string(a.TargetKind), a.TargetID, a.Text, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert annotation")
	}
	return &a, nil
}

func (s *SQLiteStore) ListAnnotations(ctx context.Context, projectID string, limit int) ([]model.Annotation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, target_kind, target_id, text, created_at, updated_at
		 FROM annotations WHERE project_id = ? ORDER BY created_at DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list annotations")
	}
	defer rows.Close()

	var annotations []model.Annotation
	for rows.Next() {
		var a model.Annotation
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.TargetKind, &a.TargetID, &a.Text, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan annotation")
		}
		annotations = append(annotations, a)
	}
	return annotations, eris.Wrap(rows.Err(), "sqlite: list annotations iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}
