package storage

import (
	"context"
	"fmt"

	"github.com/nvander/tidyflow/internal/model"
)

// Operation statuses recorded in history.
const (
	statusMoved  = "moved"
	statusFailed = "failed"
)

// RecordOperations writes one history row per dispatched move item,
// marking items the backend reported errors for as failed.
func (s *SQLiteStorage) RecordOperations(ctx context.Context, runID string, items []model.MoveItem, result *model.ApplyResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}

	failures := make(map[string]string, len(result.Errors))
	for _, moveErr := range result.Errors {
		failures[moveErr.Path] = moveErr.Reason
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO operation_history (run_id, source_path, target_folder, status, error_message)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		status := statusMoved
		var errMsg any
		if reason, failed := failures[item.Path]; failed {
			status = statusFailed
			errMsg = reason
		}
		if _, err := stmt.ExecContext(ctx, runID, item.Path, item.TargetFolder, status, errMsg); err != nil {
			return fmt.Errorf("failed to record operation for %s: %w", item.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit operation history: %w", err)
	}

	return nil
}
