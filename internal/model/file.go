// Package model defines the core data structures for the tidyflow application.
package model

import (
	"path/filepath"
	"strings"
	"time"
)

// FileRecord is an immutable snapshot of one analyzed file, produced by the
// analysis backend. The path is unique within a single analysis run.
type FileRecord struct {
	Path              string  `json:"path"`
	Name              string  `json:"filename"`
	MimeType          string  `json:"mime_type"`
	SuggestedCategory string  `json:"suggested_category"`
	SizeBytes         int64   `json:"size"`
	Confidence        float64 `json:"confidence_score"`
}

// Extension returns the file's extension derived from the last dot in the
// name, lower-cased and including the dot. Files without a dot have no
// extension.
func (f FileRecord) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// AnalysisRun describes one completed scan-and-categorize pass over a
// directory. Files and suggestions derived from a run become stale when a
// newer run for the same path completes.
type AnalysisRun struct {
	CompletedAt time.Time `json:"completed_at"`
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	TotalFiles  int       `json:"total_files"`
	TotalBytes  int64     `json:"total_bytes"`
}

// CategorySummary aggregates file count and size for one suggested category
// within a run.
type CategorySummary struct {
	Category   string `json:"category"`
	FileCount  int    `json:"file_count"`
	TotalBytes int64  `json:"total_bytes"`
}
