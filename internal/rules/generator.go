package rules

import (
	"fmt"
	"sort"

	"github.com/nvander/tidyflow/internal/model"
)

// Generate evaluates every enabled rule against every file and groups the
// matches into suggestions. Rules are evaluated in descending priority then
// ascending ID order, so identical inputs always yield suggestions in the
// same order with the same membership. A rule with zero matches produces no
// suggestion; a file matched by several rules appears in each of their
// suggestions.
//
// Both inputs are human-scale (tens of rules, thousands of files), so the
// rules-times-files pass is fine.
func Generate(files []model.FileRecord, ruleSet []model.Rule) []model.Suggestion {
	ordered := make([]model.Rule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority.Rank() != ordered[j].Priority.Rank() {
			return ordered[i].Priority.Rank() > ordered[j].Priority.Rank()
		}
		return ordered[i].ID < ordered[j].ID
	})

	matcher := NewMatcher(ordered)

	var suggestions []model.Suggestion
	for _, rule := range ordered {
		if !rule.Enabled {
			continue
		}

		var matching []model.FileRecord
		for _, file := range files {
			if matcher.Matches(rule, file) {
				matching = append(matching, file)
			}
		}

		if len(matching) == 0 {
			continue
		}

		suggestions = append(suggestions, model.Suggestion{
			RuleID:        rule.ID,
			Title:         rule.Title,
			Description:   describeMatches(rule.Description, len(matching)),
			TargetFolder:  rule.TargetFolder,
			Priority:      rule.Priority,
			MatchingFiles: matching,
		})
	}

	return suggestions
}

// describeMatches extends a rule description with the match count.
func describeMatches(description string, count int) string {
	noun := "files"
	if count == 1 {
		noun = "file"
	}
	if description == "" {
		return fmt.Sprintf("%d matching %s", count, noun)
	}
	return fmt.Sprintf("%s (%d matching %s)", description, count, noun)
}
