package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/pipeline"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// DB represents the database connection
type DB struct {
	Pool *pgxpool.Pool
}

// RunRecord is one stored analysis run
type RunRecord struct {
	ID        uuid.UUID        `json:"id"`
	Persona   string           `json:"persona"`
	Job       string           `json:"job"`
	Intent    models.JobIntent `json:"intent"`
	Domain    string           `json:"domain"`
	Documents []string         `json:"documents"`
	Sections  int              `json:"sections"`
	Elapsed   time.Duration    `json:"elapsed"`
	CreatedAt time.Time        `json:"created_at"`
}

// StoredSection is a selected section as persisted for a run
type StoredSection struct {
	RunID       uuid.UUID          `json:"run_id"`
	Rank        int                `json:"rank"`
	Document    string             `json:"document"`
	PageNumber  int                `json:"page_number"`
	Title       string             `json:"section_title"`
	SectionType string             `json:"section_type"`
	Origin      string             `json:"origin"`
	Relevance   float64            `json:"relevance_score"`
	FinalScore  float64            `json:"final_score"`
	Factors     map[string]float64 `json:"ranking_factors"`
	KeyConcepts []string           `json:"key_concepts"`
	Preview     string             `json:"preview"`
}

// NewRunRecord describes a finished pipeline result for storage
func NewRunRecord(id uuid.UUID, persona, job string, res *pipeline.Result) RunRecord {
	rec := RunRecord{
		ID:        id,
		Persona:   persona,
		Job:       job,
		Sections:  len(res.Selected),
		Elapsed:   res.Elapsed,
		CreatedAt: res.Started.UTC(),
		Documents: make([]string, 0, len(res.Documents)),
	}
	if res.Context != nil {
		rec.Intent = res.Context.JobIntent
		rec.Domain = res.Context.Domain
	}
	for _, d := range res.Documents {
		rec.Documents = append(rec.Documents, d.Document)
	}
	return rec
}

// NewDB creates a new database connection
func NewDB(connStr string) (*DB, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Initialize sets up the database tables and indices
func (db *DB) Initialize(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS analysis_runs (
            id UUID PRIMARY KEY,
            persona TEXT NOT NULL,
            job TEXT NOT NULL,
            intent TEXT NOT NULL,
            domain TEXT,
            documents TEXT[] NOT NULL,
            section_count INTEGER NOT NULL,
            elapsed_ms BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create analysis_runs table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS ranked_sections (
            id SERIAL PRIMARY KEY,
            run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
            rank INTEGER NOT NULL,
            document TEXT NOT NULL,
            page_number INTEGER NOT NULL,
            title TEXT NOT NULL,
            section_type TEXT NOT NULL,
            origin TEXT NOT NULL,
            relevance DOUBLE PRECISION NOT NULL,
            final_score DOUBLE PRECISION NOT NULL,
            factors JSONB NOT NULL,
            key_concepts TEXT[],
            preview TEXT
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create ranked_sections table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS ranked_sections_run_idx ON ranked_sections (run_id, rank);
		CREATE INDEX IF NOT EXISTS ranked_sections_document_idx ON ranked_sections (document);
		CREATE INDEX IF NOT EXISTS analysis_runs_created_idx ON analysis_runs (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create additional indices: %w", err)
	}

	return nil
}

// StoreRun stores a run and its selected sections in one transaction
func (db *DB) StoreRun(ctx context.Context, rec RunRecord, sections []models.RankedSection) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO analysis_runs (
            id, persona, job, intent, domain, documents, section_count, elapsed_ms, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `,
		rec.ID,
		rec.Persona,
		rec.Job,
		string(rec.Intent),
		rec.Domain,
		rec.Documents,
		rec.Sections,
		rec.Elapsed.Milliseconds(),
		rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rs := range sections {
		batch.Queue(`
            INSERT INTO ranked_sections (
                run_id, rank, document, page_number, title, section_type, origin,
                relevance, final_score, factors, key_concepts, preview
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        `,
			rec.ID,
			rs.Rank,
			rs.Document,
			rs.PageNumber,
			rs.Title,
			rs.Type.String(),
			string(rs.Origin),
			rs.Relevance,
			rs.FinalScore,
			rs.Factors,
			rs.KeyConcepts,
			rs.Preview)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to store ranked sections: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `id, persona, job, intent, domain, documents, section_count, elapsed_ms, created_at`

// ListRuns returns the most recent runs first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+runColumns+`
        FROM analysis_runs
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// GetRun fetches one run by id
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (RunRecord, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+runColumns+` FROM analysis_runs WHERE id = $1`, id)
	rec, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return rec, err
}

func scanRun(row pgx.Row) (RunRecord, error) {
	var (
		rec       RunRecord
		intent    string
		domain    *string
		elapsedMS int64
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Persona,
		&rec.Job,
		&intent,
		&domain,
		&rec.Documents,
		&rec.Sections,
		&elapsedMS,
		&rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}
	rec.Intent = models.JobIntent(intent)
	if domain != nil {
		rec.Domain = *domain
	}
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return rec, nil
}

const sectionColumns = `run_id, rank, document, page_number, title, section_type, origin,
               relevance, final_score, factors, key_concepts, preview`

// QueryRunSections returns a run's sections in rank order
func (db *DB) QueryRunSections(ctx context.Context, runID uuid.UUID) ([]StoredSection, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+sectionColumns+`
        FROM ranked_sections
        WHERE run_id = $1
        ORDER BY rank
    `, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run sections: %w", err)
	}
	return processRows(rows)
}

// QuerySectionsByDocument finds stored sections whose document name contains the pattern
func (db *DB) QuerySectionsByDocument(ctx context.Context, document string, limit int) ([]StoredSection, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+sectionColumns+`
        FROM ranked_sections
        WHERE document ILIKE '%' || $1 || '%'
        ORDER BY final_score DESC
        LIMIT $2
    `, document, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query document sections: %w", err)
	}
	return processRows(rows)
}

func processRows(rows pgx.Rows) ([]StoredSection, error) {
	defer rows.Close()

	var sections []StoredSection
	for rows.Next() {
		var s StoredSection
		var preview *string

		if err := rows.Scan(
			&s.RunID,
			&s.Rank,
			&s.Document,
			&s.PageNumber,
			&s.Title,
			&s.SectionType,
			&s.Origin,
			&s.Relevance,
			&s.FinalScore,
			&s.Factors,
			&s.KeyConcepts,
			&preview); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if preview != nil {
			s.Preview = *preview
		}

		sections = append(sections, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sections, nil
}

// DeleteRun removes a run and its sections
func (db *DB) DeleteRun(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM analysis_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}
