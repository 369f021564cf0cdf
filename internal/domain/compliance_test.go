package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplianceCheckRequestValidate(t *testing.T) {
	valid := ComplianceCheckRequest{
		AdCopy:   "Fresh coffee, delivered weekly.",
		Locale:   "en-US",
		Platform: "google",
		Industry: "general",
	}
	assert.NoError(t, valid.Validate("compliance.check"))

	t.Run("ad copy too long", func(t *testing.T) {
		req := valid
		req.AdCopy = strings.Repeat("a", MaxAdCopyLength+1)
		err := req.Validate("compliance.check")

		var ve *ValidationError
		assert.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "adCopy")
	})

	t.Run("whitespace-only locale", func(t *testing.T) {
		req := valid
		req.Locale = "   "
		err := req.Validate("compliance.check")

		var ve *ValidationError
		assert.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "locale")
	})
}

// Every violated constraint is reported in one error, not just the first.
func TestComplianceCheckRequestValidateEnumeratesAllViolations(t *testing.T) {
	req := ComplianceCheckRequest{
		AdCopy:   "",
		Locale:   "",
		Platform: "",
		Industry: "general",
	}
	err := req.Validate("compliance.check")

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 3)
	assert.Contains(t, ve.Fields, "adCopy")
	assert.Contains(t, ve.Fields, "locale")
	assert.Contains(t, ve.Fields, "platform")
}

func TestCompareComplianceRequestValidate(t *testing.T) {
	req := CompareComplianceRequest{
		AdCopy:    "",
		Locales:   nil,
		Platforms: nil,
		Industry:  "",
	}
	err := req.Validate("compliance.compare")

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 4)

	req = CompareComplianceRequest{
		AdCopy:    "Try it today",
		Locales:   []string{"en-US", "de-DE"},
		Platforms: []string{"google"},
		Industry:  "finance",
	}
	assert.NoError(t, req.Validate("compliance.compare"))
}

func TestComplianceReportCriticalCount(t *testing.T) {
	report := ComplianceReport{
		Issues: []ComplianceIssue{
			{Issue: "a", Severity: SeverityHigh},
			{Issue: "b", Severity: SeverityLow},
			{Issue: "c", Severity: SeverityHigh},
		},
	}
	assert.Equal(t, 2, report.CriticalCount())
	assert.Equal(t, 0, (&ComplianceReport{}).CriticalCount())
}
