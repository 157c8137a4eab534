package model

// Suggestion is a proposed batch move: all files matching one enabled rule,
// bound for that rule's target folder. Suggestions are derived per analysis
// run and never persisted. A file matched by several enabled rules appears
// in each rule's suggestion.
type Suggestion struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	TargetFolder  string       `json:"target_folder"`
	Priority      Priority     `json:"priority"`
	MatchingFiles []FileRecord `json:"matching_files"`
	RuleID        int64        `json:"rule_id"`
}

// MoveItem is one file/target pair in a move batch.
type MoveItem struct {
	Path         string `json:"path"`
	TargetFolder string `json:"target_folder"`
}

// MoveError reports why a single file in a batch could not be moved.
type MoveError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ApplyResult is the reconciled outcome of dispatching one move batch.
type ApplyResult struct {
	Errors     []MoveError `json:"errors"`
	MovedCount int         `json:"moved_count"`
}

// Failed reports whether any item in the batch was not moved.
func (r ApplyResult) Failed() bool {
	return len(r.Errors) > 0
}
