package mock

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rizzads/rizzads/internal/ai"
)

// Client is a mock AI client for testing and development
type Client struct {
	logger *slog.Logger

	// Configurable responses for testing
	GenerateResponse json.RawMessage
	GenerateError    error

	// GenerateErrors, when set, is consumed one entry per call before
	// falling back to GenerateError/GenerateResponse. Lets tests script
	// fail-then-succeed sequences.
	GenerateErrors []error

	// Call tracking for testing
	GenerateCalls int
	LastPrompt    string
}

// New creates a new mock AI client
func New(logger *slog.Logger) *Client {
	return &Client{
		logger: logger,
	}
}

// GenerateStructured returns the configured response, or a canned
// compliance-shaped report when nothing is configured.
func (c *Client) GenerateStructured(ctx context.Context, params ai.GenerateParams) (*ai.GenerateResult, error) {
	c.GenerateCalls++
	c.LastPrompt = params.Prompt

	if len(c.GenerateErrors) > 0 {
		err := c.GenerateErrors[0]
		c.GenerateErrors = c.GenerateErrors[1:]
		if err != nil {
			return nil, err
		}
	} else if c.GenerateError != nil {
		return nil, c.GenerateError
	}

	output := c.GenerateResponse
	if output == nil {
		output = json.RawMessage(`{
			"issues": [
				{
					"issue": "Superlative claim without substantiation",
					"severity": "medium",
					"rule": "Truth in advertising",
					"suggestedFix": "Qualify the claim with a cited source"
				}
			],
			"overallRisk": "medium",
			"autoFixedCopy": "Quality coffee, delivered weekly.",
			"explanation": "The copy makes one unsubstantiated superlative claim."
		}`)
	}

	return &ai.GenerateResult{
		Output: output,
		Usage: ai.UsageInfo{
			Model:        "mock",
			InputTokens:  len(params.Prompt) / 4,
			OutputTokens: len(output) / 4,
			Duration:     2 * time.Millisecond,
		},
	}, nil
}
