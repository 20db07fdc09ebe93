package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/nmdb/internal/models"
	"github.com/desertthunder/nmdb/internal/shared"
)

const runColumns = `
	id, sequence, locale, status, games_total, tracks_total,
	tables_written, tables_skipped, workbook_path, error_message,
	started_at, finished_at, created_at, updated_at
`

// RunRepository persists [models.Run] records.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run with a generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.Locale,
		string(run.Status),
		run.GamesTotal,
		run.TracksTotal,
		run.TablesWritten,
		run.TablesSkipped,
		nullable(run.WorkbookPath),
		nullable(run.ErrorMessage),
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	return scanRun(r.db.QueryRow(query, id))
}

// Update stores the mutable fields of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, games_total = ?, tracks_total = ?, tables_written = ?,
			tables_skipped = ?, workbook_path = ?, error_message = ?,
			finished_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		string(run.Status),
		run.GamesTotal,
		run.TracksTotal,
		run.TablesWritten,
		run.TablesSkipped,
		nullable(run.WorkbookPath),
		nullable(run.ErrorMessage),
		run.FinishedAt,
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// List returns the most recent runs first. A non-empty locale filters by locale; limit <= 0 returns all runs.
func (r *RunRepository) List(locale string, limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}

	if locale != "" {
		query += " WHERE locale = ?"
		args = append(args, locale)
	}

	query += " ORDER BY sequence DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a [sql.Row] or the current row of [sql.Rows] into a [models.Run]
func scanRun(row scanner) (*models.Run, error) {
	var (
		id            string
		sequence      int
		locale        string
		status        string
		gamesTotal    int
		tracksTotal   int
		tablesWritten int
		tablesSkipped int
		workbookPath  sql.NullString
		errorMessage  sql.NullString
		startedAt     time.Time
		finishedAt    sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(
		&id, &sequence, &locale, &status, &gamesTotal, &tracksTotal,
		&tablesWritten, &tablesSkipped, &workbookPath, &errorMessage,
		&startedAt, &finishedAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := &models.Run{
		Locale:        locale,
		Status:        models.RunStatus(status),
		GamesTotal:    gamesTotal,
		TracksTotal:   tracksTotal,
		TablesWritten: tablesWritten,
		TablesSkipped: tablesSkipped,
		WorkbookPath:  workbookPath.String,
		ErrorMessage:  errorMessage.String,
		StartedAt:     startedAt,
	}
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return run, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
