package mock

import (
	"context"
	"fmt"
	"log/slog"
)

// Translator is a mock translation engine for testing and development.
// It tags the text with the target locale instead of translating.
type Translator struct {
	logger *slog.Logger

	// Configurable responses for testing
	TranslateError error

	// Call tracking for testing
	TranslateCalls int
}

// New creates a new mock translator
func New(logger *slog.Logger) *Translator {
	return &Translator{
		logger: logger,
	}
}

// Translate returns the text tagged with the target locale.
func (t *Translator) Translate(ctx context.Context, text, sourceLocale, targetLocale string) (string, error) {
	t.TranslateCalls++

	if t.TranslateError != nil {
		return "", t.TranslateError
	}
	if sourceLocale == targetLocale {
		return text, nil
	}
	return fmt.Sprintf("[%s] %s", targetLocale, text), nil
}
