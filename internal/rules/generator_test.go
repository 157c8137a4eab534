package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvander/tidyflow/internal/model"
)

func scriptFiles() []model.FileRecord {
	return []model.FileRecord{
		{Path: "/x/a.ps1", Name: "a.ps1", SizeBytes: 100},
		{Path: "/x/b.BAT", Name: "b.BAT", SizeBytes: 200},
		{Path: "/x/c.txt", Name: "c.txt", SizeBytes: 300},
	}
}

func TestGenerate_ExtensionSetGroupsMatches(t *testing.T) {
	ruleSet := []model.Rule{
		{
			ID:           1,
			Title:        "Scripts",
			MatchKind:    model.MatchExtensionSet,
			MatchValue:   ".ps1,.bat",
			TargetFolder: "Scripts",
			Priority:     model.PriorityMedium,
			Enabled:      true,
		},
	}

	suggestions := Generate(scriptFiles(), ruleSet)

	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(1), suggestions[0].RuleID)
	assert.Equal(t, "Scripts", suggestions[0].TargetFolder)
	require.Len(t, suggestions[0].MatchingFiles, 2)
	assert.Equal(t, "/x/a.ps1", suggestions[0].MatchingFiles[0].Path)
	assert.Equal(t, "/x/b.BAT", suggestions[0].MatchingFiles[1].Path)
	assert.Equal(t, "2 matching files", suggestions[0].Description)
}

func TestGenerate_FilenamePattern(t *testing.T) {
	files := []model.FileRecord{
		{Path: "/d/report_backup.pdf", Name: "report_backup.pdf"},
		{Path: "/d/report.pdf", Name: "report.pdf"},
	}
	ruleSet := []model.Rule{
		{
			ID:           4,
			Title:        "Backups",
			Description:  "Stale backup copies",
			MatchKind:    model.MatchFilenamePattern,
			MatchValue:   "(backup|bak)",
			TargetFolder: "Backups",
			Priority:     model.PriorityLow,
			Enabled:      true,
		},
	}

	suggestions := Generate(files, ruleSet)

	require.Len(t, suggestions, 1)
	require.Len(t, suggestions[0].MatchingFiles, 1)
	assert.Equal(t, "/d/report_backup.pdf", suggestions[0].MatchingFiles[0].Path)
	assert.Equal(t, "Stale backup copies (1 matching file)", suggestions[0].Description)
}

func TestGenerate_Ordering(t *testing.T) {
	files := scriptFiles()
	ruleSet := []model.Rule{
		{ID: 9, Title: "Low", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
			TargetFolder: "A", Priority: model.PriorityLow, Enabled: true},
		{ID: 2, Title: "High B", MatchKind: model.MatchExtensionSet, MatchValue: ".bat",
			TargetFolder: "B", Priority: model.PriorityHigh, Enabled: true},
		{ID: 1, Title: "High A", MatchKind: model.MatchExtensionSet, MatchValue: ".txt",
			TargetFolder: "C", Priority: model.PriorityHigh, Enabled: true},
	}

	suggestions := Generate(files, ruleSet)

	require.Len(t, suggestions, 3)
	// Descending priority, then ascending rule ID within a priority.
	assert.Equal(t, int64(1), suggestions[0].RuleID)
	assert.Equal(t, int64(2), suggestions[1].RuleID)
	assert.Equal(t, int64(9), suggestions[2].RuleID)
}

func TestGenerate_Deterministic(t *testing.T) {
	files := scriptFiles()
	ruleSet := []model.Rule{
		{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1,.bat",
			TargetFolder: "Scripts", Priority: model.PriorityMedium, Enabled: true},
		{ID: 2, Title: "Text", MatchKind: model.MatchExtensionSet, MatchValue: ".txt",
			TargetFolder: "Text", Priority: model.PriorityMedium, Enabled: true},
	}

	first := Generate(files, ruleSet)
	second := Generate(files, ruleSet)

	assert.Equal(t, first, second)
}

func TestGenerate_SkipsDisabledAndEmpty(t *testing.T) {
	files := scriptFiles()
	ruleSet := []model.Rule{
		{ID: 1, Title: "Disabled", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
			TargetFolder: "A", Priority: model.PriorityHigh, Enabled: false},
		{ID: 2, Title: "No matches", MatchKind: model.MatchExtensionSet, MatchValue: ".iso",
			TargetFolder: "B", Priority: model.PriorityHigh, Enabled: true},
	}

	assert.Empty(t, Generate(files, ruleSet))
}

func TestGenerate_EmptyFileSet(t *testing.T) {
	ruleSet := []model.Rule{
		{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
			TargetFolder: "Scripts", Priority: model.PriorityHigh, Enabled: true},
	}

	assert.Empty(t, Generate(nil, ruleSet))
}

func TestGenerate_FileInMultipleSuggestions(t *testing.T) {
	files := []model.FileRecord{
		{Path: "/x/deploy.ps1", Name: "deploy.ps1"},
	}
	ruleSet := []model.Rule{
		{ID: 1, Title: "Scripts", MatchKind: model.MatchExtensionSet, MatchValue: ".ps1",
			TargetFolder: "Scripts", Priority: model.PriorityHigh, Enabled: true},
		{ID: 2, Title: "Deploys", MatchKind: model.MatchFilenamePattern, MatchValue: "deploy",
			TargetFolder: "Deploys", Priority: model.PriorityLow, Enabled: true},
	}

	suggestions := Generate(files, ruleSet)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "/x/deploy.ps1", suggestions[0].MatchingFiles[0].Path)
	assert.Equal(t, "/x/deploy.ps1", suggestions[1].MatchingFiles[0].Path)
}

func TestGenerate_UncompilablePatternProducesNothing(t *testing.T) {
	files := scriptFiles()
	ruleSet := []model.Rule{
		{ID: 1, Title: "Broken", MatchKind: model.MatchFilenamePattern, MatchValue: "([unclosed",
			TargetFolder: "X", Priority: model.PriorityHigh, Enabled: true},
	}

	assert.Empty(t, Generate(files, ruleSet))
}
