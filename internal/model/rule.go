package model

import "time"

// MatchKind is the closed set of matching strategies a rule can use.
type MatchKind string

// Match kind constants.
const (
	// MatchExtensionSet matches files whose extension is in a
	// comma-separated list, e.g. ".ps1,.bat".
	MatchExtensionSet MatchKind = "extension_set"
	// MatchFilenamePattern matches filenames against a case-insensitive
	// regular expression.
	MatchFilenamePattern MatchKind = "filename_pattern"
	// MatchFolderContains matches files whose path contains a literal
	// substring.
	MatchFolderContains MatchKind = "folder_contains"
)

// Valid reports whether k is a known match kind.
func (k MatchKind) Valid() bool {
	switch k {
	case MatchExtensionSet, MatchFilenamePattern, MatchFolderContains:
		return true
	}
	return false
}

// Priority orders rules during suggestion generation.
type Priority string

// Priority constants.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a sortable weight, highest priority first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() != 0
}

// Rule is a user-defined organization rule. Rules persist across analysis
// runs. A rule whose MatchValue is not syntactically valid for its MatchKind
// is inert: it matches nothing but is never rejected at save time.
type Rule struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MatchKind    MatchKind `json:"match_kind"`
	MatchValue   string    `json:"match_value"`
	TargetFolder string    `json:"target_folder"`
	Priority     Priority  `json:"priority"`
	ID           int64     `json:"id"`
	Enabled      bool      `json:"enabled"`
}
