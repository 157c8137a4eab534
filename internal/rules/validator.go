package rules

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nvander/tidyflow/internal/model"
)

// Validate checks that a rule's fields are present and that its match value
// is syntactically valid for its match kind. An invalid rule is still
// persisted and simply matches nothing at evaluation time; this check
// exists so the rule owner can be warned instead of wondering why a rule
// never fires.
func Validate(rule *model.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}

	err := validation.ValidateStruct(rule,
		validation.Field(&rule.Title, validation.Required),
		validation.Field(&rule.MatchKind, validation.Required, validation.By(validMatchKind)),
		validation.Field(&rule.MatchValue, validation.Required),
		validation.Field(&rule.TargetFolder, validation.Required),
		validation.Field(&rule.Priority, validation.Required, validation.By(validPriority)),
	)
	if err != nil {
		return err
	}

	return validateMatchValue(rule.MatchKind, rule.MatchValue)
}

func validMatchKind(value any) error {
	kind, _ := value.(model.MatchKind)
	if !kind.Valid() {
		return fmt.Errorf("must be one of %s, %s, %s",
			model.MatchExtensionSet, model.MatchFilenamePattern, model.MatchFolderContains)
	}
	return nil
}

func validPriority(value any) error {
	priority, _ := value.(model.Priority)
	if !priority.Valid() {
		return fmt.Errorf("must be one of %s, %s, %s",
			model.PriorityHigh, model.PriorityMedium, model.PriorityLow)
	}
	return nil
}

// validateMatchValue checks the match value against its kind's syntax.
func validateMatchValue(kind model.MatchKind, value string) error {
	switch kind {
	case model.MatchExtensionSet:
		if len(normalizeExtensions(value)) == 0 {
			return fmt.Errorf("extension set %q contains no extensions", value)
		}
	case model.MatchFilenamePattern:
		if _, err := regexp.Compile("(?i)" + value); err != nil {
			return fmt.Errorf("filename pattern does not compile: %w", err)
		}
	case model.MatchFolderContains:
		// Any non-empty substring is valid.
	}
	return nil
}
