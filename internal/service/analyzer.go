// Package service contains the business logic layer.
//
// This file implements the AI compliance analyzer: it assembles the
// analysis prompt from the ad copy, its market context, and the issues the
// deterministic pass already matched, invokes the structured-generation
// client under the shared retry policy, and validates the decoded report.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/rizzads/rizzads/internal/ai"
	"github.com/rizzads/rizzads/internal/domain"
	"github.com/rizzads/rizzads/internal/metrics"
	"github.com/rizzads/rizzads/internal/retry"
)

// AnalyzeParams contains everything the analyzer embeds in its prompt.
type AnalyzeParams struct {
	AdCopy               string
	Locale               string
	Platform             string
	Industry             string
	Authority            string // Legal authority for the locale, if known
	AdditionalGuidelines string // Country guidance forwarded verbatim
	PatternIssues        []domain.PatternMatchIssue
	StrictMode           bool
}

// Analyzer runs the semantic compliance pass against the AI client.
type Analyzer struct {
	client ai.Client
	policy retry.Policy
	logger *slog.Logger
}

// NewAnalyzer creates a new Analyzer. The client is injected rather than
// constructed lazily so its lifecycle is owned by the caller.
func NewAnalyzer(client ai.Client, policy retry.Policy, logger *slog.Logger) *Analyzer {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy
	}
	return &Analyzer{
		client: client,
		policy: policy,
		logger: logger,
	}
}

// AnalyzeCompliance performs the semantic compliance analysis. Transient
// provider failures are retried per the analyzer's policy; on exhaustion,
// or on a non-retryable failure (including output that fails validation),
// the error is wrapped as a generation failure tagged with the stage name
// and propagated. Nothing is swallowed.
func (a *Analyzer) AnalyzeCompliance(ctx context.Context, params AnalyzeParams) (*domain.ComplianceReport, error) {
	const op = "compliance.analyze"
	stage := fmt.Sprintf("AI compliance analysis for %s in %s", params.Platform, params.Locale)

	prompt := buildCompliancePrompt(params)

	var result *ai.GenerateResult
	attempt := 0
	err := retry.Do(ctx, a.policy, ai.IsRetryable, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.AIRetriesTotal.Inc()
			a.logger.Info("retrying AI compliance analysis", "attempt", attempt, "platform", params.Platform, "locale", params.Locale)
		}

		r, callErr := a.client.GenerateStructured(ctx, ai.GenerateParams{
			Prompt: prompt,
			Schema: complianceReportSchema,
		})
		if callErr != nil {
			metrics.AIAPICalls.WithLabelValues("error").Inc()
			return callErr
		}

		metrics.AIAPICalls.WithLabelValues("success").Inc()
		metrics.AITokensTotal.WithLabelValues("input").Add(float64(r.Usage.InputTokens))
		metrics.AITokensTotal.WithLabelValues("output").Add(float64(r.Usage.OutputTokens))
		metrics.AICostCentsTotal.Add(float64(r.Usage.CostCents))
		result = r
		return nil
	})
	if err != nil {
		return nil, domain.GenerationFailed(err, op, stage)
	}

	var report domain.ComplianceReport
	if err := json.Unmarshal(result.Output, &report); err != nil {
		return nil, domain.GenerationFailed(fmt.Errorf("decode report: %w", err), op, stage)
	}

	normalizeReport(&report, params)
	return &report, nil
}

// normalizeReport coerces out-of-vocabulary severities to medium and fills
// an empty rewrite with the original copy so downstream consumers always
// see a complete report.
func normalizeReport(report *domain.ComplianceReport, params AnalyzeParams) {
	for i := range report.Issues {
		if !report.Issues[i].Severity.IsValid() {
			report.Issues[i].Severity = domain.SeverityMedium
		}
	}
	if !report.OverallRisk.IsValid() {
		report.OverallRisk = domain.SeverityMedium
	}
	if report.AutoFixedCopy == "" {
		report.AutoFixedCopy = params.AdCopy
	}
}

// =============================================================================
// Quick heuristic check
// =============================================================================

// redFlagPatterns are the quick check's hardcoded tells. This is a
// deliberately coarse screen, independent of the rule corpus, for callers
// that want a cheap signal before paying for the full AI pass.
var redFlagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bguaranteed\b`),
	regexp.MustCompile(`(?i)100%\s*(free|effective|safe)`),
	regexp.MustCompile(`(?i)\b(no|zero)[\s-]risk\b`),
	regexp.MustCompile(`(?i)\b(miracle|instant(ly)?\s+(cure|results?))\b`),
}

// QuickCheckResult is the outcome of the heuristic screen. Confidence is
// 100 minus 20 per red flag hit.
type QuickCheckResult struct {
	Flags      []string `json:"flags"`
	Confidence int      `json:"confidence"`
}

// QuickCheck scans ad copy for hardcoded red-flag phrasing without touching
// the rule corpus or the AI client.
func QuickCheck(adCopy string) QuickCheckResult {
	var flags []string
	for _, re := range redFlagPatterns {
		if m := re.FindString(adCopy); m != "" {
			flags = append(flags, m)
		}
	}
	return QuickCheckResult{
		Flags:      flags,
		Confidence: 100 - 20*len(flags),
	}
}
