// Package service contains the business logic layer.
//
// This file implements the variant generator: per target locale it
// translates the source copy, then asks the model to fit the translated
// text to the platform's character limit and tone. Per-locale failures
// degrade to the untranslated source instead of failing the whole call.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/rizzads/rizzads/internal/ai"
	"github.com/rizzads/rizzads/internal/domain"
	"github.com/rizzads/rizzads/internal/metrics"
	"github.com/rizzads/rizzads/internal/retry"
	"github.com/rizzads/rizzads/internal/translate"
)

// platformCharLimits caps the adapted copy per platform. Platforms missing
// from this table get no cap and every variant reports WithinLimit=true.
var platformCharLimits = map[string]int{
	"google":   90,
	"meta":     125,
	"linkedin": 150,
	"tiktok":   100,
}

// =============================================================================
// Interface Definition
// =============================================================================

// GeneratorService defines the interface for ad variant generation.
type GeneratorService interface {
	// GenerateVariants produces one variant per requested locale, in
	// request order. A locale whose translation or formatting fails yields
	// a degraded variant carrying the source copy and a warning.
	GenerateVariants(ctx context.Context, req domain.GenerateVariantsRequest) (*domain.GenerateVariantsResult, error)
}

// =============================================================================
// Implementation
// =============================================================================

type generatorService struct {
	translator translate.Translator
	client     ai.Client
	policy     retry.Policy
	logger     *slog.Logger
}

// NewGeneratorService creates a new GeneratorService.
func NewGeneratorService(translator translate.Translator, client ai.Client, policy retry.Policy, logger *slog.Logger) GeneratorService {
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy
	}
	return &generatorService{
		translator: translator,
		client:     client,
		policy:     policy,
		logger:     logger,
	}
}

func (s *generatorService) GenerateVariants(ctx context.Context, req domain.GenerateVariantsRequest) (*domain.GenerateVariantsResult, error) {
	const op = "generate.variants"

	if err := req.Validate(op); err != nil {
		return nil, err
	}

	limit := platformCharLimits[req.Platform]

	variants := make([]domain.AdVariant, 0, len(req.Locales))
	for _, locale := range req.Locales {
		variant := s.generateOne(ctx, req, locale, limit)
		if variant.Degraded {
			metrics.VariantsGenerated.WithLabelValues("degraded").Inc()
		} else {
			metrics.VariantsGenerated.WithLabelValues("success").Inc()
		}
		variants = append(variants, variant)
	}

	return &domain.GenerateVariantsResult{
		SourceCopy: req.AdCopy,
		Platform:   req.Platform,
		Variants:   variants,
	}, nil
}

// generateOne runs the translate-then-format pipeline for a single locale.
func (s *generatorService) generateOne(ctx context.Context, req domain.GenerateVariantsRequest, locale string, limit int) domain.AdVariant {
	translated := req.AdCopy
	if locale != req.SourceLocale {
		text, err := s.translator.Translate(ctx, req.AdCopy, req.SourceLocale, locale)
		if err != nil {
			s.logger.Warn("translation failed, using source copy",
				"locale", locale,
				"error", err,
			)
			return s.degradedVariant(req.AdCopy, locale, limit, "translation failed: "+err.Error())
		}
		translated = text
	}

	formatted, err := s.formatForPlatform(ctx, translated, req.Platform, limit)
	if err != nil {
		s.logger.Warn("platform formatting failed, using unformatted copy",
			"locale", locale,
			"platform", req.Platform,
			"error", err,
		)
		return s.degradedVariant(translated, locale, limit, "formatting failed: "+err.Error())
	}

	return domain.AdVariant{
		Locale:         locale,
		Copy:           formatted,
		CharacterLimit: limit,
		WithinLimit:    withinLimit(formatted, limit),
	}
}

func (s *generatorService) degradedVariant(copyText, locale string, limit int, warning string) domain.AdVariant {
	return domain.AdVariant{
		Locale:         locale,
		Copy:           copyText,
		CharacterLimit: limit,
		WithinLimit:    withinLimit(copyText, limit),
		Degraded:       true,
		Warning:        warning,
	}
}

// formatForPlatform asks the model to adapt the copy to the platform. The
// call runs under the shared retry policy like the compliance analyzer.
func (s *generatorService) formatForPlatform(ctx context.Context, text, platform string, limit int) (string, error) {
	if limit == 0 {
		return text, nil
	}

	prompt := buildFormatPrompt(text, platform, limit)

	var result *ai.GenerateResult
	attempt := 0
	err := retry.Do(ctx, s.policy, ai.IsRetryable, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.AIRetriesTotal.Inc()
		}
		r, callErr := s.client.GenerateStructured(ctx, ai.GenerateParams{
			Prompt: prompt,
			Schema: formatCopySchema,
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
		return "", err
	}

	var decoded struct {
		Copy string `json:"copy"`
	}
	if err := json.Unmarshal(result.Output, &decoded); err != nil {
		return "", fmt.Errorf("decode formatted copy: %w", ai.EAIMalformedOutput)
	}
	if decoded.Copy == "" {
		return "", fmt.Errorf("empty formatted copy: %w", ai.EAIMalformedOutput)
	}

	return decoded.Copy, nil
}

// withinLimit measures in runes so multi-byte scripts aren't penalized.
func withinLimit(text string, limit int) bool {
	if limit == 0 {
		return true
	}
	return utf8.RuneCountInString(text) <= limit
}
