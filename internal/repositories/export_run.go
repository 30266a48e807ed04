package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// ExportRunRepository records bulk exports.
type ExportRunRepository struct {
	db *sql.DB
}

// NewExportRunRepository creates a new [ExportRunRepository] with the given database connection
func NewExportRunRepository(db *sql.DB) *ExportRunRepository {
	return &ExportRunRepository{db: db}
}

// Start inserts a run that has not finished yet.
func (r *ExportRunRepository) Start(run *models.ExportRun) error {
	if run.RunID == "" {
		run.RunID = shared.GenerateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	query := `
		INSERT INTO export_runs (id, format, output_dir, total, succeeded, failed, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, run.RunID, run.Format, run.OutputDir, run.Total, run.Succeeded, run.Failed, run.StartedAt); err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}
	return nil
}

// Finish stores the final counts of a run.
func (r *ExportRunRepository) Finish(run *models.ExportRun) error {
	now := time.Now()
	run.FinishedAt = &now

	query := `UPDATE export_runs SET total = ?, succeeded = ?, failed = ?, finished_at = ? WHERE id = ?`
	result, err := r.db.Exec(query, run.Total, run.Succeeded, run.Failed, now, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to finish export run: %w", err)
	}
	return affected(result, "export run", run.RunID)
}

// Recent returns up to limit runs, newest first.
func (r *ExportRunRepository) Recent(limit int) ([]*models.ExportRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT id, format, output_dir, total, succeeded, failed, started_at, finished_at
		FROM export_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ExportRun
	for rows.Next() {
		var (
			run      models.ExportRun
			finished sql.NullTime
		)
		if err := rows.Scan(&run.RunID, &run.Format, &run.OutputDir, &run.Total, &run.Succeeded, &run.Failed, &run.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
