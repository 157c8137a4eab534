package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nvander/tidyflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRule  = errors.New("invalid rule")
	ErrRuleNotFound = errors.New("rule not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRule validates the fields persistence depends on. Syntactic
// validity of the match value is deliberately not checked here: an invalid
// rule is stored and fails closed at match time.
func validateRule(rule *model.Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidRule)
	}
	if !rule.MatchKind.Valid() {
		return fmt.Errorf("%w: unknown match kind %q", ErrInvalidRule, rule.MatchKind)
	}
	if strings.TrimSpace(rule.TargetFolder) == "" {
		return fmt.Errorf("%w: missing target folder", ErrInvalidRule)
	}
	if !rule.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidRule, rule.Priority)
	}
	return nil
}
