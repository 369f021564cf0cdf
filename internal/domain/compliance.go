// Package domain contains core business types and interfaces.
//
// This file defines the compliance check request/result types exchanged
// between the HTTP layer, the orchestrator, and the AI analyzer. Every type
// here is created fresh inside a single check and discarded after the
// response is returned; nothing is persisted.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxAdCopyLength is the upper bound on ad copy accepted for a check.
const MaxAdCopyLength = 5000

// =============================================================================
// Issues and Reports
// =============================================================================

// PatternMatchIssue is a deterministic finding produced by the rule matcher.
type PatternMatchIssue struct {
	RuleID    string   `json:"id"`                  // Copied from the source rule
	Rule      string   `json:"rule"`                // Rule description
	Severity  Severity `json:"severity"`            // Risk tier
	Match     string   `json:"match,omitempty"`     // Captured text, if any
	Fix       string   `json:"fix,omitempty"`       // Suggested remediation, if any
	Authority string   `json:"authority,omitempty"` // Legal authority, country rules only
}

// ComplianceIssue is an AI-produced finding. It is a deliberately distinct
// shape from PatternMatchIssue; the two lists are concatenated for counting
// but never merged into one typed list.
type ComplianceIssue struct {
	Issue        string   `json:"issue"`        // Free-text description
	Severity     Severity `json:"severity"`     // Risk tier
	Rule         string   `json:"rule"`         // Rule or regulation label
	SuggestedFix string   `json:"suggestedFix"` // Proposed rewrite for the finding
}

// ComplianceReport is the structured output of the AI compliance analysis.
type ComplianceReport struct {
	Issues        []ComplianceIssue `json:"issues"`
	OverallRisk   Severity          `json:"overallRisk"`
	AutoFixedCopy string            `json:"autoFixedCopy"`
	Explanation   string            `json:"explanation"`
}

// CriticalCount returns the number of high-severity issues in the report.
func (r *ComplianceReport) CriticalCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityHigh {
			n++
		}
	}
	return n
}

// =============================================================================
// Check Request / Result
// =============================================================================

// ComplianceCheckRequest is a request to evaluate a single ad copy against
// one locale, platform, and industry.
type ComplianceCheckRequest struct {
	AdCopy     string `json:"adCopy"`
	Locale     string `json:"locale"`
	Platform   string `json:"platform"`
	Industry   string `json:"industry"`
	StrictMode bool   `json:"strictMode"`
}

// Validate checks the request fields, collecting every violated constraint
// into a single ValidationError rather than failing on the first. Unknown
// locale/platform/industry values are deliberately NOT validated here; they
// degrade to empty rule lists downstream.
func (r *ComplianceCheckRequest) Validate(op string) error {
	var err error

	if strings.TrimSpace(r.AdCopy) == "" {
		err = addField(err, op, "adCopy", "ad copy is required")
	} else if len(r.AdCopy) > MaxAdCopyLength {
		err = addField(err, op, "adCopy", "ad copy must be at most 5000 characters")
	}
	if strings.TrimSpace(r.Locale) == "" {
		err = addField(err, op, "locale", "locale is required")
	}
	if strings.TrimSpace(r.Platform) == "" {
		err = addField(err, op, "platform", "platform is required")
	}
	if strings.TrimSpace(r.Industry) == "" {
		err = addField(err, op, "industry", "industry is required")
	}

	return err
}

func addField(err error, op, field, message string) error {
	if err == nil {
		return NewValidationError(op, field, message)
	}
	return AddFieldError(err, field, message)
}

// CheckMetadata carries counting and timing information for a check.
//
// TotalIssues counts both pools independently; duplicates across the
// pattern and AI lists are not deduplicated, so TotalIssues is always at
// least the pattern issue count.
type CheckMetadata struct {
	TotalIssues      int   `json:"totalIssues"`
	CriticalIssues   int   `json:"criticalIssues"`
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// ComplianceCheckResult is the merged artifact returned to the caller.
type ComplianceCheckResult struct {
	ID                   uuid.UUID           `json:"id"`
	Success              bool                `json:"success"`
	AdCopy               string              `json:"adCopy"`
	Locale               string              `json:"locale"`
	Platform             string              `json:"platform"`
	Industry             string              `json:"industry"`
	PatternMatchedIssues []PatternMatchIssue `json:"patternMatchedIssues"`
	AIAnalysis           ComplianceReport    `json:"aiAnalysis"`
	PublishSafety        PublishSafety       `json:"publishSafety"`
	Timestamp            time.Time           `json:"timestamp"`
	Metadata             CheckMetadata       `json:"metadata"`
}

// =============================================================================
// Compare Request / Result
// =============================================================================

// CompareComplianceRequest asks for compliance checks across the cross
// product of the requested locales and platforms.
type CompareComplianceRequest struct {
	AdCopy    string   `json:"adCopy"`
	Locales   []string `json:"locales"`
	Platforms []string `json:"platforms"`
	Industry  string   `json:"industry"`
}

// Validate collects every violated constraint into one ValidationError.
func (r *CompareComplianceRequest) Validate(op string) error {
	var err error

	if strings.TrimSpace(r.AdCopy) == "" {
		err = addField(err, op, "adCopy", "ad copy is required")
	} else if len(r.AdCopy) > MaxAdCopyLength {
		err = addField(err, op, "adCopy", "ad copy must be at most 5000 characters")
	}
	if len(r.Locales) == 0 {
		err = addField(err, op, "locales", "at least one locale is required")
	}
	if len(r.Platforms) == 0 {
		err = addField(err, op, "platforms", "at least one platform is required")
	}
	if strings.TrimSpace(r.Industry) == "" {
		err = addField(err, op, "industry", "industry is required")
	}

	return err
}

// CompareSummary ranks the checked combinations.
type CompareSummary struct {
	SafestLocale   string   `json:"safestLocale"`
	SafestPlatform string   `json:"safestPlatform"`
	OverallRisk    Severity `json:"overallRisk"`
}

// CompareComplianceResult holds the per-combination results plus the summary.
type CompareComplianceResult struct {
	Results []ComplianceCheckResult `json:"results"`
	Summary CompareSummary          `json:"summary"`
}
