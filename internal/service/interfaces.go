// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/nvander/tidyflow/internal/model"
)

// RuleStore defines the contract for rule persistence.
type RuleStore interface {
	CreateRule(ctx context.Context, rule *model.Rule) error
	GetRule(ctx context.Context, id int64) (*model.Rule, error)
	ListRules(ctx context.Context) ([]model.Rule, error)
	UpdateRule(ctx context.Context, rule *model.Rule) error
	DeleteRule(ctx context.Context, id int64) error
}

// ResultCache persists the last completed analysis per directory so a later
// session can resume without re-scanning. Writes are wholesale and
// last-write-wins per analyzed path.
type ResultCache interface {
	SaveAnalysis(ctx context.Context, run *model.AnalysisRun, files []model.FileRecord) error
	GetLatestAnalysis(ctx context.Context) (*model.AnalysisRun, []model.FileRecord, error)
	GetRunSummary(ctx context.Context, runID string) ([]model.CategorySummary, error)
}

// HistoryStore records dispatched move operations for auditing.
type HistoryStore interface {
	RecordOperations(ctx context.Context, runID string, items []model.MoveItem, result *model.ApplyResult) error
}

// Storage is the full persistence contract implemented by the SQLite layer.
type Storage interface {
	RuleStore
	ResultCache
	HistoryStore

	Migrate(ctx context.Context) error
	Close() error
}

// MoveRequest carries one flattened move batch to the backend.
type MoveRequest struct {
	BasePath string           `json:"base_path"`
	Items    []model.MoveItem `json:"items"`
}

// MoveResponse is the backend's synchronous answer to a move batch.
type MoveResponse struct {
	Errors  []model.MoveError `json:"errors"`
	Moved   int               `json:"moved"`
	Success bool              `json:"success"`
}

// AnalysisSource starts an analysis on the backend and hands back the raw
// event stream for the consumer to decode.
type AnalysisSource interface {
	StartAnalysis(ctx context.Context, path string, recursive bool) (io.ReadCloser, error)
}

// Mover dispatches one move batch to the backend. Implementations issue a
// single synchronous request; retrying is the caller's decision.
type Mover interface {
	MoveFiles(ctx context.Context, req MoveRequest) (*MoveResponse, error)
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
