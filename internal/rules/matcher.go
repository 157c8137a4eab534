// Package rules evaluates organization rules against analyzed file sets and
// groups matches into move suggestions.
package rules

import (
	"regexp"
	"strings"

	"github.com/nvander/tidyflow/internal/model"
)

// Matcher evaluates rules against file records. Filename patterns are
// compiled once up front; a rule whose pattern does not compile fails
// closed and matches nothing.
type Matcher struct {
	compiledPatterns map[int64]*regexp.Regexp
	extensionSets    map[int64][]string
	rules            []model.Rule
}

// NewMatcher creates a matcher for the given rules.
func NewMatcher(rules []model.Rule) *Matcher {
	m := &Matcher{
		rules:            rules,
		compiledPatterns: make(map[int64]*regexp.Regexp),
		extensionSets:    make(map[int64][]string),
	}

	for _, rule := range rules {
		switch rule.MatchKind {
		case model.MatchFilenamePattern:
			if re, err := regexp.Compile("(?i)" + rule.MatchValue); err == nil {
				m.compiledPatterns[rule.ID] = re
			}
		case model.MatchExtensionSet:
			m.extensionSets[rule.ID] = normalizeExtensions(rule.MatchValue)
		}
	}

	return m
}

// Matches reports whether the rule matches the file. Unknown match kinds
// and uncompilable patterns match nothing.
func (m *Matcher) Matches(rule model.Rule, file model.FileRecord) bool {
	switch rule.MatchKind {
	case model.MatchExtensionSet:
		ext := file.Extension()
		if ext == "" {
			return false
		}
		for _, token := range m.extensionSets[rule.ID] {
			if token == ext {
				return true
			}
		}
		return false
	case model.MatchFilenamePattern:
		re, ok := m.compiledPatterns[rule.ID]
		if !ok {
			return false
		}
		return re.MatchString(file.Name)
	case model.MatchFolderContains:
		return strings.Contains(file.Path, rule.MatchValue)
	}

	return false
}

// normalizeExtensions splits a comma-separated extension list into
// lower-cased tokens with a leading dot. Empty tokens are dropped.
func normalizeExtensions(value string) []string {
	var tokens []string
	for _, raw := range strings.Split(value, ",") {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if !strings.HasPrefix(token, ".") {
			token = "." + token
		}
		tokens = append(tokens, token)
	}
	return tokens
}
