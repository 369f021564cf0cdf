package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Client defines the interface for schema-constrained structured generation.
// The model is a black box: implementations render a prompt, obtain a
// response, and hand back raw JSON for the caller to decode against its own
// schema. Retry policy belongs to the caller; implementations perform a
// single attempt and classify failures via the sentinel errors below.
type Client interface {
	// GenerateStructured sends the prompt and returns the model's structured
	// output. The output is guaranteed to be syntactically valid JSON but
	// not validated against any schema; callers own semantic validation.
	GenerateStructured(ctx context.Context, params GenerateParams) (*GenerateResult, error)
}

// GenerateParams contains parameters for a structured generation call.
type GenerateParams struct {
	Prompt    string          // Full prompt text
	MaxTokens int             // Response token cap; 0 means the provider default
	Schema    json.RawMessage // Optional JSON schema hint forwarded to the provider
}

// GenerateResult contains the model's output and usage accounting.
type GenerateResult struct {
	Output json.RawMessage // Raw structured output
	Usage  UsageInfo       // Token usage and cost information
}

// UsageInfo tracks API usage for cost monitoring.
type UsageInfo struct {
	Model        string        // Model used
	InputTokens  int           // Tokens in the request
	OutputTokens int           // Tokens in the response
	CostCents    int           // Estimated cost in cents
	Duration     time.Duration // Request duration
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAIInvalidRequest indicates the request was rejected by the provider
	EAIInvalidRequest = errors.New("invalid ai request")

	// EAIMalformedOutput indicates the model response was not valid JSON
	EAIMalformedOutput = errors.New("ai output is not valid structured data")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")
)

// IsRetryable returns true if the error is a transient error that can be
// retried: rate limiting, timeouts, and service unavailability. Schema or
// request problems are not retryable; repeating them cannot succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
