package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/model"
)

// SaveAnalysis persists a completed analysis run and its file set in one
// transaction. Earlier runs for the same path are replaced, so reads always
// see the latest completed scan of a directory.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, run *model.AnalysisRun, files []model.FileRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateString(run.ID, "run.ID"); err != nil {
		return err
	}
	if err := validateString(run.Path, "run.Path"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Last-write-wins per analyzed path.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM analysis_files WHERE run_id IN (SELECT id FROM analysis_runs WHERE path = ?)",
		run.Path); err != nil {
		return fmt.Errorf("failed to clear cached files: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM analysis_runs WHERE path = ?", run.Path); err != nil {
		return fmt.Errorf("failed to clear cached runs: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, path, total_files, total_bytes, completed_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Path, run.TotalFiles, run.TotalBytes, run.CompletedAt); err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO analysis_files (run_id, path, name, size_bytes, mime_type, suggested_category, confidence, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, file := range files {
		if _, err := stmt.ExecContext(ctx,
			run.ID, file.Path, file.Name, file.SizeBytes,
			file.MimeType, file.SuggestedCategory, file.Confidence, i); err != nil {
			return fmt.Errorf("failed to save file %s: %w", file.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}

	return nil
}

// GetLatestAnalysis returns the most recently completed analysis run and
// its file set, in original arrival order.
func (s *SQLiteStorage) GetLatestAnalysis(ctx context.Context) (*model.AnalysisRun, []model.FileRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}

	var run model.AnalysisRun
	err := s.db.QueryRowContext(ctx, `
		SELECT id, path, total_files, total_bytes, completed_at
		FROM analysis_runs
		ORDER BY completed_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Path, &run.TotalFiles, &run.TotalBytes, &run.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, common.ErrNoAnalysis
		}
		return nil, nil, fmt.Errorf("failed to get latest analysis: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, name, size_bytes, mime_type, suggested_category, confidence
		FROM analysis_files
		WHERE run_id = ?
		ORDER BY position ASC
	`, run.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cached files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []model.FileRecord
	for rows.Next() {
		var file model.FileRecord
		if err := rows.Scan(&file.Path, &file.Name, &file.SizeBytes,
			&file.MimeType, &file.SuggestedCategory, &file.Confidence); err != nil {
			return nil, nil, fmt.Errorf("failed to scan cached file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating cached files: %w", err)
	}

	return &run, files, nil
}

// GetRunSummary aggregates file count and total size per suggested category
// for one cached run.
func (s *SQLiteStorage) GetRunSummary(ctx context.Context, runID string) ([]model.CategorySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(suggested_category, ''), COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM analysis_files
		WHERE run_id = ?
		GROUP BY suggested_category
		ORDER BY COUNT(*) DESC, suggested_category ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []model.CategorySummary
	for rows.Next() {
		var summary model.CategorySummary
		if err := rows.Scan(&summary.Category, &summary.FileCount, &summary.TotalBytes); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return summaries, nil
}
