package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// complianceReportSchema is the output contract sent to the model alongside
// the compliance prompt. The analyzer still validates the decoded report;
// the schema exists to constrain providers that support it.
var complianceReportSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "issue": {"type": "string"},
          "severity": {"type": "string", "enum": ["high", "medium", "low"]},
          "rule": {"type": "string"},
          "suggestedFix": {"type": "string"}
        },
        "required": ["issue", "severity", "rule", "suggestedFix"]
      }
    },
    "overallRisk": {"type": "string", "enum": ["high", "medium", "low"]},
    "autoFixedCopy": {"type": "string"},
    "explanation": {"type": "string"}
  },
  "required": ["issues", "overallRisk", "autoFixedCopy", "explanation"]
}`)

// formatCopySchema is the output contract for the variant formatting call.
var formatCopySchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "copy": {"type": "string"}
  },
  "required": ["copy"]
}`)

// industryConsiderations maps industry slugs to guidance blurbs embedded in
// the compliance prompt. Unlisted industries fall back to "general".
var industryConsiderations = map[string]string{
	"finance": "Financial promotions must not guarantee returns, must present " +
		"risk alongside reward, and must not imply regulatory endorsement.",
	"crypto": "Crypto assets are unregulated or restricted in many markets; " +
		"price-appreciation hype and fear-of-missing-out pressure are common rejection causes.",
	"health": "Health claims require approved-treatment status; cure, prevention, " +
		"and diagnosis language is the highest-risk category on every platform.",
	"weight-loss": "Weight-loss advertising must avoid specific amount claims, " +
		"effortless-results framing, and body-shaming implications.",
	"general": "Apply general truth-in-advertising standards: claims must be " +
		"substantiated, material terms disclosed, and comparisons fair.",
}

// platformConsiderations maps platform ids to review-policy blurbs.
// Unlisted platforms fall back to "general".
var platformConsiderations = map[string]string{
	"google": "Google Ads enforces editorial standards strictly: punctuation " +
		"gimmicks, generic calls to action, and unverifiable superlatives are disapproved automatically.",
	"meta": "Meta prohibits ads that assert or imply personal attributes of the " +
		"viewer and restricts before/after imagery and sensational framing.",
	"linkedin": "LinkedIn reviews ads against a professional-context bar; " +
		"income claims and recruitment-style framing draw extra scrutiny.",
	"tiktok": "TikTok's youngest-skewing audience triggers stricter review of " +
		"exaggerated claims and age-sensitive content.",
	"general": "Assume a mainstream ad network's editorial standards: no " +
		"misleading claims, no prohibited categories, no deceptive formatting.",
}

func considerationFor(table map[string]string, key string) string {
	if v, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return v
	}
	return table["general"]
}

// buildCompliancePrompt assembles the analysis prompt: the ad copy, its
// market context, everything the deterministic pass already found, and the
// strictness directive.
func buildCompliancePrompt(params AnalyzeParams) string {
	var b strings.Builder

	b.WriteString("You are an advertising compliance reviewer. Assess the following ad copy ")
	fmt.Fprintf(&b, "for the %q platform, the %q market, and the %q industry.\n\n", params.Platform, params.Locale, params.Industry)

	fmt.Fprintf(&b, "Ad copy:\n---\n%s\n---\n\n", params.AdCopy)

	if params.Authority != "" {
		fmt.Fprintf(&b, "The governing advertising authority for this market is %s.\n", params.Authority)
	}
	if params.AdditionalGuidelines != "" {
		fmt.Fprintf(&b, "Market-specific guidelines:\n%s\n", params.AdditionalGuidelines)
	}
	b.WriteString("\n")

	if len(params.PatternIssues) > 0 {
		b.WriteString("Deterministic rule matching already found these issues. Weigh them in your assessment and address each one in the rewritten copy:\n")
		for _, issue := range params.PatternIssues {
			fmt.Fprintf(&b, "- [%s] %s", issue.Severity, issue.Rule)
			if issue.Match != "" {
				fmt.Fprintf(&b, " (matched: %q)", issue.Match)
			}
			if issue.Fix != "" {
				fmt.Fprintf(&b, " — suggested fix: %s", issue.Fix)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Deterministic rule matching found no issues; your semantic review is the only line of defense.\n\n")
	}

	fmt.Fprintf(&b, "Industry considerations: %s\n", considerationFor(industryConsiderations, params.Industry))
	fmt.Fprintf(&b, "Platform considerations: %s\n\n", considerationFor(platformConsiderations, params.Platform))

	if params.StrictMode {
		b.WriteString("Strictness: ZERO TOLERANCE. Flag every finding however minor, " +
			"rate borderline findings at the higher severity, and rewrite conservatively.\n\n")
	} else {
		b.WriteString("Strictness: standard business judgment. Flag findings a " +
			"platform reviewer or regulator would plausibly act on.\n\n")
	}

	b.WriteString(`Respond with a JSON object of this exact structure:

{
  "issues": [
    {
      "issue": "What the problem is",
      "severity": "high|medium|low",
      "rule": "The rule or regulation the issue falls under",
      "suggestedFix": "How to fix this specific issue"
    }
  ],
  "overallRisk": "high|medium|low",
  "autoFixedCopy": "The full ad copy rewritten to resolve every issue",
  "explanation": "A short overall assessment"
}

Return ONLY the JSON object, no additional text.`)

	return b.String()
}

// buildFormatPrompt asks the model to adapt translated ad copy to a
// platform's character limit and tone.
func buildFormatPrompt(text, platform string, limit int) string {
	return fmt.Sprintf(`You are an advertising copywriter. Adapt the following ad copy for the %q platform. Keep the meaning, match the platform's tone, and stay within %d characters.

Ad copy:
---
%s
---

Respond with a JSON object of this exact structure:

{
  "copy": "The adapted ad copy"
}

Return ONLY the JSON object, no additional text.`, platform, limit, text)
}
