// Package service contains the business logic layer.
//
// This file implements the compliance orchestrator: the single-check
// pipeline (deterministic matching, then AI analysis, then merge), the
// concurrent batch runner, and the locale×platform compare operation.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rizzads/rizzads/internal/domain"
	"github.com/rizzads/rizzads/internal/metrics"
	"github.com/rizzads/rizzads/internal/rules"
	"github.com/rizzads/rizzads/internal/storage"
)

// defaultBatchConcurrency limits concurrent AI API calls to avoid rate limiting
const defaultBatchConcurrency = 3

// =============================================================================
// Interface Definition
// =============================================================================

// ComplianceService defines the interface for compliance check operations.
type ComplianceService interface {
	// CheckCompliance runs the two-stage pipeline for a single request.
	// Returns a multi-field validation error for malformed requests and a
	// generation error if the AI stage fails after retries; the AI pass
	// always runs even when pattern matching finds nothing.
	CheckCompliance(ctx context.Context, req domain.ComplianceCheckRequest) (*domain.ComplianceCheckResult, error)

	// BatchCheckCompliance runs all requests concurrently. The result slice
	// preserves input order. A failed member becomes a synthetic
	// Success=false entry embedding the error text; one bad input never
	// aborts the batch.
	BatchCheckCompliance(ctx context.Context, reqs []domain.ComplianceCheckRequest) []domain.ComplianceCheckResult

	// CompareCompliance checks the cross product of the requested locales
	// and platforms and ranks the combinations.
	CompareCompliance(ctx context.Context, req domain.CompareComplianceRequest) (*domain.CompareComplianceResult, error)

	// Rules returns a read-only view of the rule corpus, optionally
	// filtered to one key per namespace.
	Rules(filter rules.SnapshotFilter) rules.Snapshot
}

// =============================================================================
// Implementation
// =============================================================================

// complianceService implements the ComplianceService interface.
type complianceService struct {
	corpus      *rules.Corpus
	analyzer    *Analyzer
	archive     storage.Storage // nil when archiving is disabled
	concurrency int
	logger      *slog.Logger
}

// NewComplianceService creates a new ComplianceService. Pass a nil archive
// to keep results ephemeral; pass concurrency 0 for the default batch cap.
func NewComplianceService(
	corpus *rules.Corpus,
	analyzer *Analyzer,
	archive storage.Storage,
	concurrency int,
	logger *slog.Logger,
) ComplianceService {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &complianceService{
		corpus:      corpus,
		analyzer:    analyzer,
		archive:     archive,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *complianceService) CheckCompliance(ctx context.Context, req domain.ComplianceCheckRequest) (*domain.ComplianceCheckResult, error) {
	const op = "compliance.check"

	if err := req.Validate(op); err != nil {
		return nil, err
	}

	start := time.Now()

	validation := s.corpus.Validate(req.AdCopy, req.Locale, req.Platform, req.Industry)
	for _, issue := range validation.Issues {
		metrics.PatternIssuesFound.WithLabelValues(issue.Severity.String()).Inc()
	}

	country := s.corpus.CountryRules(req.Locale)
	report, err := s.analyzer.AnalyzeCompliance(ctx, AnalyzeParams{
		AdCopy:               req.AdCopy,
		Locale:               req.Locale,
		Platform:             req.Platform,
		Industry:             req.Industry,
		Authority:            country.Authority,
		AdditionalGuidelines: country.AdditionalGuidelines,
		PatternIssues:        validation.Issues,
		StrictMode:           req.StrictMode,
	})
	if err != nil {
		metrics.ComplianceChecksTotal.WithLabelValues("error", "unknown").Inc()
		return nil, err
	}

	elapsed := time.Since(start)

	patternIssues := validation.Issues
	if patternIssues == nil {
		patternIssues = []domain.PatternMatchIssue{}
	}

	critical := report.CriticalCount()
	for _, issue := range patternIssues {
		if issue.Severity == domain.SeverityHigh {
			critical++
		}
	}

	result := &domain.ComplianceCheckResult{
		ID:                   uuid.New(),
		Success:              true,
		AdCopy:               req.AdCopy,
		Locale:               req.Locale,
		Platform:             req.Platform,
		Industry:             req.Industry,
		PatternMatchedIssues: patternIssues,
		AIAnalysis:           *report,
		PublishSafety:        domain.EvaluatePublishSafety(patternIssues, !req.StrictMode),
		Timestamp:            time.Now().UTC(),
		Metadata: domain.CheckMetadata{
			TotalIssues:      len(patternIssues) + len(report.Issues),
			CriticalIssues:   critical,
			ProcessingTimeMs: elapsed.Milliseconds(),
		},
	}

	metrics.ComplianceChecksTotal.WithLabelValues("success", report.OverallRisk.String()).Inc()
	metrics.ComplianceCheckDuration.WithLabelValues(req.Platform).Observe(elapsed.Seconds())

	s.archiveResult(ctx, result)

	return result, nil
}

func (s *complianceService) BatchCheckCompliance(ctx context.Context, reqs []domain.ComplianceCheckRequest) []domain.ComplianceCheckResult {
	metrics.BatchChecksTotal.Inc()
	metrics.BatchSize.Observe(float64(len(reqs)))

	results := make([]domain.ComplianceCheckResult, len(reqs))

	// Fire all requests, capped by a semaphore; results land in input order
	// regardless of completion order.
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req domain.ComplianceCheckRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := s.CheckCompliance(ctx, req)
			if err != nil {
				s.logger.Warn("batch member failed",
					"index", i,
					"platform", req.Platform,
					"locale", req.Locale,
					"error", err,
				)
				results[i] = s.failedResult(req, err)
				return
			}
			results[i] = *result
		}(i, req)
	}

	wg.Wait()
	return results
}

// failedResult converts a failed check into a degraded result entry: no
// pattern issues, a high-risk report stub carrying the error text.
func (s *complianceService) failedResult(req domain.ComplianceCheckRequest, err error) domain.ComplianceCheckResult {
	return domain.ComplianceCheckResult{
		ID:                   uuid.New(),
		Success:              false,
		AdCopy:               req.AdCopy,
		Locale:               req.Locale,
		Platform:             req.Platform,
		Industry:             req.Industry,
		PatternMatchedIssues: []domain.PatternMatchIssue{},
		AIAnalysis: domain.ComplianceReport{
			Issues:        []domain.ComplianceIssue{},
			OverallRisk:   domain.SeverityHigh,
			AutoFixedCopy: req.AdCopy,
			Explanation:   fmt.Sprintf("Compliance check failed: %s", err),
		},
		PublishSafety: domain.PublishSafety{
			Safe:           false,
			Reason:         "Compliance check did not complete",
			Recommendation: "Fix the request or retry the check",
		},
		Timestamp: time.Now().UTC(),
	}
}

func (s *complianceService) CompareCompliance(ctx context.Context, req domain.CompareComplianceRequest) (*domain.CompareComplianceResult, error) {
	const op = "compliance.compare"

	if err := req.Validate(op); err != nil {
		return nil, err
	}

	// Cross product in request order: locales outer, platforms inner.
	checks := make([]domain.ComplianceCheckRequest, 0, len(req.Locales)*len(req.Platforms))
	for _, locale := range req.Locales {
		for _, platform := range req.Platforms {
			checks = append(checks, domain.ComplianceCheckRequest{
				AdCopy:   req.AdCopy,
				Locale:   locale,
				Platform: platform,
				Industry: req.Industry,
			})
		}
	}

	results := s.BatchCheckCompliance(ctx, checks)

	// Rank by cumulative score over pattern-matched issues only; AI-found
	// issues deliberately do not participate in this ranking.
	localeScores := make(map[string]int, len(req.Locales))
	platformScores := make(map[string]int, len(req.Platforms))
	scoreSum := 0
	for _, result := range results {
		score := domain.ComplianceScore(result.PatternMatchedIssues)
		localeScores[result.Locale] += score
		platformScores[result.Platform] += score
		scoreSum += score
	}

	summary := domain.CompareSummary{
		SafestLocale:   highestScoring(req.Locales, localeScores),
		SafestPlatform: highestScoring(req.Platforms, platformScores),
		OverallRisk:    riskFromAverageScore(scoreSum, len(results)),
	}

	return &domain.CompareComplianceResult{
		Results: results,
		Summary: summary,
	}, nil
}

// highestScoring picks the key with the highest cumulative score, first
// wins on ties (keys iterated in request order for determinism).
func highestScoring(keys []string, scores map[string]int) string {
	best := ""
	bestScore := -1
	for _, key := range keys {
		if score := scores[key]; score > bestScore {
			best = key
			bestScore = score
		}
	}
	return best
}

// riskFromAverageScore maps the average compliance score to a risk tier.
// The 80/60 thresholds are independent of the tiered severity aggregator.
func riskFromAverageScore(sum, count int) domain.Severity {
	if count == 0 {
		return domain.SeverityLow
	}
	avg := sum / count
	switch {
	case avg > 80:
		return domain.SeverityLow
	case avg > 60:
		return domain.SeverityMedium
	default:
		return domain.SeverityHigh
	}
}

func (s *complianceService) Rules(filter rules.SnapshotFilter) rules.Snapshot {
	return s.corpus.Snapshot(filter)
}

// archiveResult writes the result to the archive when one is configured.
// Archiving is best-effort; failures are logged and never fail the check.
func (s *complianceService) archiveResult(ctx context.Context, result *domain.ComplianceCheckResult) {
	if s.archive == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("marshal result for archive", "error", err)
		metrics.ReportsArchived.WithLabelValues("error").Inc()
		return
	}

	key := storage.ReportKey(result.Timestamp, result.ID)
	if err := s.archive.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType: "application/json",
	}); err != nil {
		s.logger.Error("archive compliance report", "key", key, "error", err)
		metrics.ReportsArchived.WithLabelValues("error").Inc()
		return
	}

	metrics.ReportsArchived.WithLabelValues("success").Inc()
}
