package model

// EventKind discriminates the analysis event union.
type EventKind string

// Event kind constants, matching the backend's wire "type" field.
const (
	EventStarted   EventKind = "started"
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "error"
)

// AnalysisEvent is one event from the backend's analysis stream. Kind
// selects which of the remaining fields are meaningful:
//
//   - EventStarted: Total
//   - EventProgress: Processed, Total, CurrentFile, Category
//   - EventCompleted: Files
//   - EventFailed: Reason
//
// Exactly one Started precedes any Progress, and exactly one terminal event
// (Completed or Failed) ends the stream.
type AnalysisEvent struct {
	Kind        EventKind    `json:"type"`
	CurrentFile string       `json:"current_file,omitempty"`
	Category    string       `json:"category,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Files       []FileRecord `json:"files,omitempty"`
	Processed   int          `json:"processed,omitempty"`
	Total       int          `json:"total,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e AnalysisEvent) Terminal() bool {
	return e.Kind == EventCompleted || e.Kind == EventFailed
}
