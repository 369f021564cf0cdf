// Package domain contains core business types and interfaces.
//
// This file defines the compliance Rule type. Rules come in three kinds:
// pattern rules detected via regular expressions, keyword rules detected
// via case-insensitive substring search, and informational rules that carry
// no deterministic detection and are left to the AI analyzer's judgment.
package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// Rule Kind
// =============================================================================

// RuleKind discriminates the rule variants. Matching code must switch
// exhaustively on the kind rather than probing for optional fields.
type RuleKind string

const (
	// RuleKindPattern indicates a rule detected via regular-expression matching.
	RuleKindPattern RuleKind = "pattern"

	// RuleKindKeyword indicates a rule detected via case-insensitive
	// substring search over a fixed keyword list.
	RuleKindKeyword RuleKind = "keyword"

	// RuleKindInformational indicates a rule with no deterministic detection.
	// These exist to inform the AI analyzer's semantic pass.
	RuleKindInformational RuleKind = "informational"
)

// String returns the string representation of the kind.
func (k RuleKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is a recognized value.
func (k RuleKind) IsValid() bool {
	switch k {
	case RuleKindPattern, RuleKindKeyword, RuleKindInformational:
		return true
	}
	return false
}

// =============================================================================
// Rule
// =============================================================================

// Rule represents a single compliance rule from the static corpus.
//
// A rule is exactly one of the three kinds. Pattern rules carry a compiled
// regular expression; keyword rules carry a lowercase keyword list;
// informational rules carry neither. Rules are immutable after corpus load
// and shared across requests without locking.
type Rule struct {
	ID          string         // Unique within its rule list (e.g., "google-1")
	Description string         // Human-readable rule text
	Severity    Severity       // Risk tier when the rule fires
	Fix         string         // Optional suggested remediation
	Kind        RuleKind       // Variant discriminator
	Pattern     *regexp.Regexp // Set only for RuleKindPattern
	Keywords    []string       // Set only for RuleKindKeyword (lowercase)
}

// NewPatternRule creates a pattern rule, compiling the expression as
// written (corpus patterns carry their own (?i) flags where the rule is
// case-insensitive). Returns an error for an invalid expression so that
// corpus problems fail at load time rather than at request time.
func NewPatternRule(id, description string, severity Severity, pattern, fix string) (Rule, error) {
	if pattern == "" {
		return Rule{}, fmt.Errorf("rule %s: empty pattern", id)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: compile pattern: %w", id, err)
	}
	return Rule{
		ID:          id,
		Description: description,
		Severity:    severity,
		Fix:         fix,
		Kind:        RuleKindPattern,
		Pattern:     re,
	}, nil
}

// NewKeywordRule creates a keyword rule. Keywords are lowercased and blank
// entries dropped; at least one keyword is required.
func NewKeywordRule(id, description string, severity Severity, keywords []string, fix string) (Rule, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		return Rule{}, fmt.Errorf("rule %s: no keywords", id)
	}
	return Rule{
		ID:          id,
		Description: description,
		Severity:    severity,
		Fix:         fix,
		Kind:        RuleKindKeyword,
		Keywords:    cleaned,
	}, nil
}

// NewInformationalRule creates a rule with no deterministic detection.
func NewInformationalRule(id, description string, severity Severity, fix string) Rule {
	return Rule{
		ID:          id,
		Description: description,
		Severity:    severity,
		Fix:         fix,
		Kind:        RuleKindInformational,
	}
}
