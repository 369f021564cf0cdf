package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rizzads/rizzads/internal/ai"
	aimock "github.com/rizzads/rizzads/internal/ai/mock"
	"github.com/rizzads/rizzads/internal/domain"
	"github.com/rizzads/rizzads/internal/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastPolicy keeps retry waits at millisecond scale so tests stay quick.
var fastPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func testAnalyzeParams() AnalyzeParams {
	return AnalyzeParams{
		AdCopy:    "Fresh coffee delivered weekly",
		Locale:    "en-US",
		Platform:  "google",
		Industry:  "general",
		Authority: "FTC",
	}
}

// =============================================================================
// AnalyzeCompliance Tests
// =============================================================================

func TestAnalyzeCompliance_Success(t *testing.T) {
	client := aimock.New(testLogger())
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	report, err := analyzer.AnalyzeCompliance(context.Background(), testAnalyzeParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.GenerateCalls != 1 {
		t.Errorf("expected 1 call, got %d", client.GenerateCalls)
	}
	if len(report.Issues) != 1 {
		t.Errorf("expected 1 issue from canned response, got %d", len(report.Issues))
	}
	if report.OverallRisk != domain.SeverityMedium {
		t.Errorf("expected medium risk, got %s", report.OverallRisk)
	}
}

func TestAnalyzeCompliance_PromptCarriesContext(t *testing.T) {
	client := aimock.New(testLogger())
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	params := testAnalyzeParams()
	params.AdditionalGuidelines = "Claims must be substantiated."
	params.PatternIssues = []domain.PatternMatchIssue{
		{RuleID: "google-1", Rule: "no click here", Severity: domain.SeverityHigh, Match: "Click here"},
	}

	if _, err := analyzer.AnalyzeCompliance(context.Background(), params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		params.AdCopy,
		"FTC",
		"Claims must be substantiated.",
		"google-1",
		"Click here",
	} {
		if !strings.Contains(client.LastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAnalyzeCompliance_RetriesTransientFailure(t *testing.T) {
	client := aimock.New(testLogger())
	client.GenerateErrors = []error{ai.EAIRateLimit, ai.EAIUnavailable, nil}
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	report, err := analyzer.AnalyzeCompliance(context.Background(), testAnalyzeParams())
	if err != nil {
		t.Fatalf("expected recovery after retries, got: %v", err)
	}
	if client.GenerateCalls != 3 {
		t.Errorf("expected 3 calls, got %d", client.GenerateCalls)
	}
	if report == nil {
		t.Fatal("expected report after recovery")
	}
}

func TestAnalyzeCompliance_NonRetryableFailsImmediately(t *testing.T) {
	client := aimock.New(testLogger())
	client.GenerateError = ai.EAIInvalidRequest
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	_, err := analyzer.AnalyzeCompliance(context.Background(), testAnalyzeParams())
	if err == nil {
		t.Fatal("expected error")
	}
	if client.GenerateCalls != 1 {
		t.Errorf("non-retryable error should not be retried, got %d calls", client.GenerateCalls)
	}
	if domain.ErrorCode(err) != domain.EGENERATION {
		t.Errorf("expected %s code, got %s", domain.EGENERATION, domain.ErrorCode(err))
	}
	if !strings.Contains(domain.ErrorMessage(err), "AI compliance analysis for google in en-US") {
		t.Errorf("error message missing stage tag: %s", domain.ErrorMessage(err))
	}
}

func TestAnalyzeCompliance_ExhaustedRetriesPropagate(t *testing.T) {
	client := aimock.New(testLogger())
	client.GenerateError = ai.EAIRateLimit
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	_, err := analyzer.AnalyzeCompliance(context.Background(), testAnalyzeParams())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if client.GenerateCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.GenerateCalls)
	}
	if domain.ErrorCode(err) != domain.EGENERATION {
		t.Errorf("expected %s code, got %s", domain.EGENERATION, domain.ErrorCode(err))
	}
}

func TestAnalyzeCompliance_UndecodableOutputFails(t *testing.T) {
	client := aimock.New(testLogger())
	client.GenerateResponse = json.RawMessage(`"just a string"`)
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	_, err := analyzer.AnalyzeCompliance(context.Background(), testAnalyzeParams())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if domain.ErrorCode(err) != domain.EGENERATION {
		t.Errorf("expected %s code, got %s", domain.EGENERATION, domain.ErrorCode(err))
	}
}

func TestAnalyzeCompliance_NormalizesInvalidFields(t *testing.T) {
	client := aimock.New(testLogger())
	client.GenerateResponse = json.RawMessage(`{
		"issues": [
			{"issue": "vague claim", "severity": "catastrophic", "rule": "truth", "suggestedFix": "soften"}
		],
		"overallRisk": "extreme",
		"autoFixedCopy": "",
		"explanation": "bad vocabulary on purpose"
	}`)
	analyzer := NewAnalyzer(client, fastPolicy, testLogger())

	params := testAnalyzeParams()
	report, err := analyzer.AnalyzeCompliance(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Issues[0].Severity != domain.SeverityMedium {
		t.Errorf("invalid severity should coerce to medium, got %s", report.Issues[0].Severity)
	}
	if report.OverallRisk != domain.SeverityMedium {
		t.Errorf("invalid overall risk should coerce to medium, got %s", report.OverallRisk)
	}
	if report.AutoFixedCopy != params.AdCopy {
		t.Errorf("empty rewrite should fall back to original copy, got %q", report.AutoFixedCopy)
	}
}

// =============================================================================
// QuickCheck Tests
// =============================================================================

func TestQuickCheck(t *testing.T) {
	testCases := []struct {
		name       string
		adCopy     string
		flags      int
		confidence int
	}{
		{"clean copy", "Fresh coffee delivered weekly", 0, 100},
		{"one flag", "Guaranteed freshness in every bag", 1, 80},
		{"multiple flags", "Guaranteed miracle, 100% free and no risk", 4, 20},
		{"case insensitive", "GUARANTEED satisfaction", 1, 80},
		{"substring does not count", "unguaranteed delivery windows", 0, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := QuickCheck(tc.adCopy)
			if len(result.Flags) != tc.flags {
				t.Errorf("expected %d flags, got %d: %v", tc.flags, len(result.Flags), result.Flags)
			}
			if result.Confidence != tc.confidence {
				t.Errorf("expected confidence %d, got %d", tc.confidence, result.Confidence)
			}
		})
	}
}
