// Package domain contains core business types and interfaces.
//
// This file defines the Severity tier, the overall-severity aggregation
// policy, the numeric compliance score, and the publish-safety policy.
package domain

// =============================================================================
// Severity
// =============================================================================

// Severity represents the risk tier of a compliance issue or report.
type Severity string

const (
	// SeverityHigh indicates a finding likely to cause ad rejection or
	// regulatory exposure.
	SeverityHigh Severity = "high"

	// SeverityMedium indicates a finding that may cause rejection depending
	// on reviewer judgment.
	SeverityMedium Severity = "medium"

	// SeverityLow indicates a minor or stylistic finding.
	SeverityLow Severity = "low"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid returns true if the severity is a recognized value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// =============================================================================
// Aggregation
// =============================================================================

// OverallSeverity reduces a list of pattern-matched issues into a single
// risk tier. The escalation is deliberately asymmetric: two medium findings
// are treated as equivalent risk to one high finding. This is NOT simply the
// maximum severity and the ordering of the checks matters.
func OverallSeverity(issues []PatternMatchIssue) Severity {
	if len(issues) == 0 {
		return SeverityLow
	}

	medium := 0
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			return SeverityHigh
		case SeverityMedium:
			medium++
		}
	}

	if medium >= 2 {
		return SeverityHigh
	}
	if medium >= 1 {
		return SeverityMedium
	}
	return SeverityLow
}

// ComplianceScore computes a linear 0-100 score over an issue list:
// 100 minus 20 per high, 10 per medium, 5 per low, floored at zero.
//
// The score is independent of OverallSeverity: a text with one high issue
// scores 80 but aggregates to "high". The two outputs are not required to
// agree at the boundary since one is linear and the other is tiered.
func ComplianceScore(issues []PatternMatchIssue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			score -= 20
		case SeverityMedium:
			score -= 10
		case SeverityLow:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// =============================================================================
// Publish Safety
// =============================================================================

// PublishSafety is the outcome of the publish-safety policy, with a
// human-readable reason and recommendation for display.
type PublishSafety struct {
	Safe           bool   `json:"safe"`
	Reason         string `json:"reason"`
	Recommendation string `json:"recommendation,omitempty"`
}

// EvaluatePublishSafety decides whether ad copy with the given issues may be
// published. Any high-severity issue blocks publication regardless of the
// caller's tolerance. More than two medium issues block unless the caller
// accepts medium risk. One or two medium issues defer to the caller's
// tolerance. Low-only lists are always safe.
func EvaluatePublishSafety(issues []PatternMatchIssue, allowMediumRisk bool) PublishSafety {
	var high, medium, low int
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}

	if high > 0 {
		return PublishSafety{
			Safe:           false,
			Reason:         "High-severity compliance issues present",
			Recommendation: "Resolve all high-severity issues before publishing",
		}
	}

	if medium > 2 && !allowMediumRisk {
		return PublishSafety{
			Safe:           false,
			Reason:         "Multiple medium-severity compliance issues present",
			Recommendation: "Reduce medium-severity issues or enable medium-risk tolerance",
		}
	}

	if medium > 0 {
		if allowMediumRisk {
			return PublishSafety{
				Safe:           true,
				Reason:         "Medium-severity issues accepted by caller tolerance",
				Recommendation: "Review medium-severity issues before a wider rollout",
			}
		}
		return PublishSafety{
			Safe:           false,
			Reason:         "Medium-severity compliance issues present",
			Recommendation: "Resolve medium-severity issues or enable medium-risk tolerance",
		}
	}

	if low > 0 {
		return PublishSafety{
			Safe:           true,
			Reason:         "Only low-severity issues present",
			Recommendation: "Consider addressing low-severity issues",
		}
	}

	return PublishSafety{
		Safe:   true,
		Reason: "No compliance issues detected",
	}
}
