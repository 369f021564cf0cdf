package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rizzads/rizzads/internal/domain"
)

func mustPattern(t *testing.T, id, desc string, sev domain.Severity, pattern, fix string) domain.Rule {
	t.Helper()
	rule, err := domain.NewPatternRule(id, desc, sev, pattern, fix)
	if err != nil {
		t.Fatalf("pattern rule %s: %v", id, err)
	}
	return rule
}

func mustKeyword(t *testing.T, id, desc string, sev domain.Severity, keywords []string) domain.Rule {
	t.Helper()
	rule, err := domain.NewKeywordRule(id, desc, sev, keywords, "")
	if err != nil {
		t.Fatalf("keyword rule %s: %v", id, err)
	}
	return rule
}

func TestCheckRulesPatternMatch(t *testing.T) {
	rules := []domain.Rule{
		mustPattern(t, "p-1", "no urgency bait", domain.SeverityHigh, `(?i)act now`, "remove the urgency"),
		mustPattern(t, "p-2", "no shouting", domain.SeverityMedium, `[!?]{2,}`, ""),
	}

	issues := CheckRules("Act now!! Supplies are limited", rules, CheckMeta{})

	assert.Len(t, issues, 2)
	assert.Equal(t, "p-1", issues[0].RuleID)
	assert.Equal(t, "Act now", issues[0].Match)
	assert.Equal(t, "remove the urgency", issues[0].Fix)
	assert.Equal(t, "p-2", issues[1].RuleID)
	assert.Equal(t, "!!", issues[1].Match)
}

// A keyword rule fires at most once per check even when several of its
// keywords appear in the text.
func TestCheckRulesKeywordShortCircuit(t *testing.T) {
	rule := mustKeyword(t, "k-1", "no hype", domain.SeverityMedium, []string{"miracle", "instant"})

	issues := CheckRules("A miracle product with instant results", []domain.Rule{rule}, CheckMeta{})

	assert.Len(t, issues, 1)
	assert.Equal(t, "miracle", issues[0].Match)
}

func TestCheckRulesKeywordCaseInsensitive(t *testing.T) {
	rule := mustKeyword(t, "k-2", "no guarantees", domain.SeverityHigh, []string{"risk-free"})

	issues := CheckRules("Totally RISK-FREE offer", []domain.Rule{rule}, CheckMeta{Authority: "FTC"})

	assert.Len(t, issues, 1)
	assert.Equal(t, "FTC", issues[0].Authority)
}

func TestCheckRulesInformationalNeverFires(t *testing.T) {
	rule := domain.NewInformationalRule("i-1", "judgment call", domain.SeverityHigh, "")

	issues := CheckRules("anything at all", []domain.Rule{rule}, CheckMeta{})

	assert.Empty(t, issues)
}

func TestCheckRulesEmptyList(t *testing.T) {
	assert.Empty(t, CheckRules("some copy", nil, CheckMeta{}))
}

// Two distinct rules matching the same text each produce an issue.
func TestCheckRulesNoDeduplicationAcrossRules(t *testing.T) {
	rules := []domain.Rule{
		mustPattern(t, "p-1", "first", domain.SeverityHigh, `(?i)guaranteed`, ""),
		mustKeyword(t, "k-1", "second", domain.SeverityMedium, []string{"guaranteed"}),
	}

	issues := CheckRules("Guaranteed delivery", rules, CheckMeta{})

	assert.Len(t, issues, 2)
}

func TestValidateKnownCombination(t *testing.T) {
	corpus, err := Load()
	assert.NoError(t, err)

	result := corpus.Validate("Guaranteed results! Click here now!!", "en-US", "google", "general")

	assert.Len(t, result.Issues, 3)

	byID := map[string]domain.PatternMatchIssue{}
	for _, issue := range result.Issues {
		byID[issue.RuleID] = issue
	}

	assert.Equal(t, domain.SeverityHigh, byID["google-1"].Severity)
	assert.Equal(t, domain.SeverityMedium, byID["google-2"].Severity)
	assert.Equal(t, "!!", byID["google-2"].Match)
	assert.Equal(t, domain.SeverityHigh, byID["us-1"].Severity)
	assert.Equal(t, "FTC", byID["us-1"].Authority)

	assert.Equal(t, domain.SeverityHigh, result.OverallSeverity)
	assert.Equal(t, 50, domain.ComplianceScore(result.Issues))

	// "general" is not a listed industry; it contributes zero rules.
	assert.Equal(t, 0, result.RulesCoverage.Industry)
	assert.Greater(t, result.RulesCoverage.Platform, 0)
	assert.Greater(t, result.RulesCoverage.Country, 0)
}

// Unknown keys in every namespace degrade to zero rules, never an error.
func TestValidateUnknownKeysDegradeGracefully(t *testing.T) {
	corpus, err := Load()
	assert.NoError(t, err)

	result := corpus.Validate("Perfectly ordinary copy", "xx-XX", "myspace", "custom-widgets")

	assert.Empty(t, result.Issues)
	assert.Equal(t, domain.SeverityLow, result.OverallSeverity)
	assert.Equal(t, RulesCoverage{}, result.RulesCoverage)
}
