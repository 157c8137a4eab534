package organizer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/rules"
	"github.com/nvander/tidyflow/internal/service"
	"github.com/nvander/tidyflow/internal/stream"
)

// Session owns one user's orchestration state: the persisted rules, the
// cached analysis result, and the backend connections. Only one analysis
// may be in flight per session; a second start is refused rather than
// silently interleaved.
type Session struct {
	storage   service.Storage
	source    service.AnalysisSource
	applier   *Applier
	analyzing atomic.Bool
}

// NewSession creates a session over the given collaborators.
func NewSession(storage service.Storage, source service.AnalysisSource, mover service.Mover) *Session {
	return &Session{
		storage: storage,
		source:  source,
		applier: NewApplier(mover, storage),
	}
}

// RunAnalysis starts an analysis of path on the backend and consumes its
// event stream to completion. onEvent observes every accepted event, in
// arrival order. The completed file set is cached for later sessions.
func (s *Session) RunAnalysis(ctx context.Context, path string, recursive bool, onEvent func(model.AnalysisEvent)) (*stream.Result, error) {
	if !s.analyzing.CompareAndSwap(false, true) {
		return nil, common.ErrAnalysisActive
	}
	defer s.analyzing.Store(false)

	eventStream, err := s.source.StartAnalysis(ctx, path, recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to start analysis: %w", err)
	}
	defer func() { _ = eventStream.Close() }()

	consumer := stream.NewConsumer(s.storage)
	return consumer.Consume(ctx, eventStream, path, onEvent)
}

// Suggestions evaluates the current rules against the last completed
// analysis and returns the resulting move suggestions together with the run
// they were derived from.
func (s *Session) Suggestions(ctx context.Context) (*model.AnalysisRun, []model.Suggestion, error) {
	run, files, err := s.storage.GetLatestAnalysis(ctx)
	if err != nil {
		return nil, nil, err
	}

	ruleSet, err := s.storage.ListRules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rules: %w", err)
	}

	return run, rules.Generate(files, ruleSet), nil
}

// Apply dispatches the suggestions for the given rule IDs as one move
// batch. An empty ruleIDs slice selects every current suggestion.
func (s *Session) Apply(ctx context.Context, ruleIDs []int64) (*model.ApplyResult, error) {
	run, suggestions, err := s.Suggestions(ctx)
	if err != nil {
		return nil, err
	}

	selected := suggestions
	if len(ruleIDs) > 0 {
		wanted := make(map[int64]bool, len(ruleIDs))
		for _, id := range ruleIDs {
			wanted[id] = true
		}
		selected = nil
		for _, suggestion := range suggestions {
			if wanted[suggestion.RuleID] {
				selected = append(selected, suggestion)
			}
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("no suggestions match the selected rule IDs")
		}
	}

	return s.applier.Apply(ctx, run.Path, run.ID, selected)
}
