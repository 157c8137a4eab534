package organizer

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/service"
)

// mockStorage is an in-memory service.Storage.
type mockStorage struct {
	mu    sync.Mutex
	rules []model.Rule
	run   *model.AnalysisRun
	files []model.FileRecord
}

func (s *mockStorage) CreateRule(_ context.Context, rule *model.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *mockStorage) GetRule(_ context.Context, id int64) (*model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rule := range s.rules {
		if rule.ID == id {
			return &rule, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *mockStorage) ListRules(_ context.Context) ([]model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Rule(nil), s.rules...), nil
}

func (s *mockStorage) UpdateRule(_ context.Context, _ *model.Rule) error { return nil }
func (s *mockStorage) DeleteRule(_ context.Context, _ int64) error       { return nil }

func (s *mockStorage) SaveAnalysis(_ context.Context, run *model.AnalysisRun, files []model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	s.files = files
	return nil
}

func (s *mockStorage) GetLatestAnalysis(_ context.Context) (*model.AnalysisRun, []model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return nil, nil, common.ErrNoAnalysis
	}
	return s.run, s.files, nil
}

func (s *mockStorage) GetRunSummary(_ context.Context, _ string) ([]model.CategorySummary, error) {
	return nil, nil
}

func (s *mockStorage) RecordOperations(_ context.Context, _ string, _ []model.MoveItem, _ *model.ApplyResult) error {
	return nil
}

func (s *mockStorage) Migrate(_ context.Context) error { return nil }
func (s *mockStorage) Close() error                    { return nil }

// blockingSource holds the stream open until released, so a second
// RunAnalysis can race against an active one.
type blockingSource struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingSource) StartAnalysis(_ context.Context, _ string, _ bool) (io.ReadCloser, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return io.NopCloser(strings.NewReader(
		"data: {\"type\":\"started\",\"total\":0}\n" +
			"data: {\"type\":\"completed\",\"files\":[]}\n")), nil
}

type staticSource struct {
	body string
}

func (s *staticSource) StartAnalysis(_ context.Context, _ string, _ bool) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestSession_RunAnalysisCachesResult(t *testing.T) {
	storage := &mockStorage{}
	source := &staticSource{body: "data: {\"type\":\"started\",\"total\":1}\n" +
		"data: {\"type\":\"completed\",\"files\":[{\"path\":\"/x/a.ps1\",\"filename\":\"a.ps1\"}]}\n"}
	session := NewSession(storage, source, &mockMover{})

	result, err := session.RunAnalysis(context.Background(), "/x", false, nil)
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)

	run, files, err := storage.GetLatestAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Run.ID, run.ID)
	assert.Len(t, files, 1)
}

func TestSession_SecondAnalysisRefusedWhileActive(t *testing.T) {
	storage := &mockStorage{}
	source := &blockingSource{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	session := NewSession(storage, source, &mockMover{})

	done := make(chan error, 1)
	go func() {
		_, err := session.RunAnalysis(context.Background(), "/x", false, nil)
		done <- err
	}()

	<-source.started
	_, err := session.RunAnalysis(context.Background(), "/x", false, nil)
	assert.ErrorIs(t, err, common.ErrAnalysisActive)

	close(source.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first analysis did not finish")
	}

	// The guard resets once the first analysis completes.
	_, err = session.RunAnalysis(context.Background(), "/x", false, nil)
	require.NoError(t, err)
}

func TestSession_SuggestionsWithoutAnalysis(t *testing.T) {
	session := NewSession(&mockStorage{}, &staticSource{}, &mockMover{})

	_, _, err := session.Suggestions(context.Background())
	assert.ErrorIs(t, err, common.ErrNoAnalysis)
}

func TestSession_Suggestions(t *testing.T) {
	storage := &mockStorage{
		run: &model.AnalysisRun{ID: "run-1", Path: "/x"},
		files: []model.FileRecord{
			{Path: "/x/a.ps1", Name: "a.ps1"},
		},
		rules: []model.Rule{
			{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
				TargetFolder: "Scripts", Priority: model.PriorityHigh, Enabled: true},
		},
	}
	session := NewSession(storage, &staticSource{}, &mockMover{})

	run, suggestions, err := session.Suggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(1), suggestions[0].RuleID)
}

func TestSession_ApplyFiltersByRuleID(t *testing.T) {
	storage := &mockStorage{
		run: &model.AnalysisRun{ID: "run-1", Path: "/x"},
		files: []model.FileRecord{
			{Path: "/x/a.ps1", Name: "a.ps1"},
			{Path: "/x/b.txt", Name: "b.txt"},
		},
		rules: []model.Rule{
			{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
				TargetFolder: "Scripts", Priority: model.PriorityHigh, Enabled: true},
			{ID: 2, Title: "Text", MatchKind: model.MatchExtensionSet, MatchValue: ".txt",
				TargetFolder: "Text", Priority: model.PriorityHigh, Enabled: true},
		},
	}
	mover := &mockMover{resp: &service.MoveResponse{Success: true, Moved: 1}}
	session := NewSession(storage, &staticSource{}, mover)

	result, err := session.Apply(context.Background(), []int64{2})
	require.NoError(t, err)

	assert.Equal(t, 1, result.MovedCount)
	require.Len(t, mover.req.Items, 1)
	assert.Equal(t, "/x/b.txt", mover.req.Items[0].Path)
	assert.Equal(t, "Text", mover.req.Items[0].TargetFolder)
}

func TestSession_ApplyUnknownRuleID(t *testing.T) {
	storage := &mockStorage{
		run:   &model.AnalysisRun{ID: "run-1", Path: "/x"},
		files: []model.FileRecord{{Path: "/x/a.ps1", Name: "a.ps1"}},
		rules: []model.Rule{
			{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
				TargetFolder: "Scripts", Priority: model.PriorityHigh, Enabled: true},
		},
	}
	session := NewSession(storage, &staticSource{}, &mockMover{})

	_, err := session.Apply(context.Background(), []int64{42})
	assert.Error(t, err)
}

func TestSession_ApplyAllSuggestionsByDefault(t *testing.T) {
	storage := &mockStorage{
		run: &model.AnalysisRun{ID: "run-1", Path: "/x"},
		files: []model.FileRecord{
			{Path: "/x/a.ps1", Name: "a.ps1"},
			{Path: "/x/b.txt", Name: "b.txt"},
		},
		rules: []model.Rule{
			{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
				TargetFolder: "Scripts", Priority: model.PriorityHigh, Enabled: true},
			{ID: 2, Title: "Text", MatchKind: model.MatchExtensionSet, MatchValue: ".txt",
				TargetFolder: "Text", Priority: model.PriorityHigh, Enabled: true},
		},
	}
	mover := &mockMover{resp: &service.MoveResponse{Success: true, Moved: 2}}
	session := NewSession(storage, &staticSource{}, mover)

	result, err := session.Apply(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.MovedCount)
	assert.Len(t, mover.req.Items, 2)
}
