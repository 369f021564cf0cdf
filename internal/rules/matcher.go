package rules

import (
	"strings"

	"github.com/rizzads/rizzads/internal/domain"
)

// CheckMeta carries optional metadata applied to every issue a rule list
// produces. Country rule lists set the authority; the other namespaces
// leave it empty.
type CheckMeta struct {
	Authority string
}

// CheckRules evaluates ad copy against a rule list and returns the matched
// issues.
//
// Pattern rules report the first matched substring. Keyword rules report
// only the first keyword found and then stop — a rule fires at most once
// per check even when several of its keywords are present. Informational
// rules never fire deterministically. Distinct rules matching the same text
// each produce independent issues; nothing is deduplicated. This function
// never fails: a nil or empty rule list simply yields no issues.
func CheckRules(adCopy string, rules []domain.Rule, meta CheckMeta) []domain.PatternMatchIssue {
	var issues []domain.PatternMatchIssue
	lowered := strings.ToLower(adCopy)

	for _, rule := range rules {
		switch rule.Kind {
		case domain.RuleKindPattern:
			loc := rule.Pattern.FindStringIndex(adCopy)
			if loc == nil {
				continue
			}
			issues = append(issues, domain.PatternMatchIssue{
				RuleID:    rule.ID,
				Rule:      rule.Description,
				Severity:  rule.Severity,
				Match:     adCopy[loc[0]:loc[1]],
				Fix:       rule.Fix,
				Authority: meta.Authority,
			})

		case domain.RuleKindKeyword:
			for _, kw := range rule.Keywords {
				if strings.Contains(lowered, kw) {
					issues = append(issues, domain.PatternMatchIssue{
						RuleID:    rule.ID,
						Rule:      rule.Description,
						Severity:  rule.Severity,
						Match:     kw,
						Fix:       rule.Fix,
						Authority: meta.Authority,
					})
					break
				}
			}

		case domain.RuleKindInformational:
			// Deterministic pass has nothing to detect; the AI analyzer
			// receives these rules through the prompt instead.
		}
	}

	return issues
}

// =============================================================================
// Three-namespace validation
// =============================================================================

// RulesCoverage reports how many rules each namespace contributed to a
// check. It exists for observability and is not used in scoring.
type RulesCoverage struct {
	Platform int `json:"platform"`
	Country  int `json:"country"`
	Industry int `json:"industry"`
}

// ValidationResult is the outcome of the deterministic compliance stage.
type ValidationResult struct {
	Issues          []domain.PatternMatchIssue `json:"issues"`
	OverallSeverity domain.Severity            `json:"overallSeverity"`
	RulesCoverage   RulesCoverage              `json:"rulesCoverage"`
}

// Validate runs the matcher over all three namespaces for the given lookup
// keys and aggregates the findings. Unknown keys contribute zero rules and
// zero issues; this path never returns an error.
func (c *Corpus) Validate(adCopy, locale, platform, industry string) ValidationResult {
	platformRules := c.PlatformRules(platform)
	country := c.CountryRules(locale)
	industryRules := c.IndustryRules(industry)

	issues := CheckRules(adCopy, platformRules, CheckMeta{})
	issues = append(issues, CheckRules(adCopy, country.Rules, CheckMeta{Authority: country.Authority})...)
	issues = append(issues, CheckRules(adCopy, industryRules, CheckMeta{})...)

	return ValidationResult{
		Issues:          issues,
		OverallSeverity: domain.OverallSeverity(issues),
		RulesCoverage: RulesCoverage{
			Platform: len(platformRules),
			Country:  len(country.Rules),
			Industry: len(industryRules),
		},
	}
}
