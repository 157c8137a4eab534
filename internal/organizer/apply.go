// Package organizer wires the analysis stream, the rule engine, and the
// move dispatch path into one user session.
package organizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/service"
)

// Applier flattens selected suggestions into a move batch, dispatches it,
// and reconciles the backend's answer. It issues one outstanding request at
// a time and never retries; re-running a failed batch is the user's call.
type Applier struct {
	mover   service.Mover
	history service.HistoryStore
}

// NewApplier creates an applier. A nil history store disables audit rows.
func NewApplier(mover service.Mover, history service.HistoryStore) *Applier {
	return &Applier{
		mover:   mover,
		history: history,
	}
}

// Flatten turns selected suggestions into a single ordered move batch. Each
// file keeps the target folder of the suggestion it was selected under; a
// file selected under two suggestions is submitted twice, not deduplicated.
func Flatten(selected []model.Suggestion) []model.MoveItem {
	var items []model.MoveItem
	for _, suggestion := range selected {
		for _, file := range suggestion.MatchingFiles {
			items = append(items, model.MoveItem{
				Path:         file.Path,
				TargetFolder: suggestion.TargetFolder,
			})
		}
	}
	return items
}

// Apply dispatches the selected suggestions as one move batch rooted at
// basePath and returns the reconciled per-file result. An empty selection
// returns an empty result without touching the backend.
func (a *Applier) Apply(ctx context.Context, basePath, runID string, selected []model.Suggestion) (*model.ApplyResult, error) {
	items := Flatten(selected)
	if len(items) == 0 {
		return &model.ApplyResult{}, nil
	}

	resp, err := a.mover.MoveFiles(ctx, service.MoveRequest{
		BasePath: basePath,
		Items:    items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch move batch: %w", err)
	}

	result := &model.ApplyResult{
		MovedCount: resp.Moved,
		Errors:     resp.Errors,
	}

	// A failure response without per-file detail means the whole batch was
	// rejected; surface every item rather than a bare boolean.
	if !resp.Success && len(resp.Errors) == 0 {
		result.MovedCount = 0
		for _, item := range items {
			result.Errors = append(result.Errors, model.MoveError{
				Path:   item.Path,
				Reason: "batch rejected by backend",
			})
		}
	}

	if a.history != nil {
		if histErr := a.history.RecordOperations(ctx, runID, items, result); histErr != nil {
			slog.Warn("Failed to record operation history", "error", histErr)
		}
	}

	slog.Info("Move batch reconciled",
		"items", len(items),
		"moved", result.MovedCount,
		"errors", len(result.Errors))

	return result, nil
}
