package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rizzads/rizzads/internal/ai"
)

const (
	// APIBaseURL is the base URL for the Anthropic API
	APIBaseURL = "https://api.anthropic.com/v1/messages"

	// APIVersion is the Anthropic API version
	APIVersion = "2023-06-01"

	// DefaultModel is the default Claude model to use
	DefaultModel = "claude-3-5-sonnet-20241022"

	// DefaultMaxTokens caps the response size when the caller doesn't
	DefaultMaxTokens = 4096

	// Pricing in cents per 1M tokens for claude-3-5-sonnet
	PricingInputCents  = 300  // $3 per 1M input tokens
	PricingOutputCents = 1500 // $15 per 1M output tokens
)

// Config contains configuration for the Anthropic provider
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string // Overridable for tests
	RequestTimeout time.Duration
}

// Client implements the ai.Client interface using Anthropic's messages API.
//
// The client performs exactly one attempt per call; the compliance analyzer
// owns the retry policy and classifies failures through ai.IsRetryable.
// Its lifecycle is explicit: construct it once at startup (the API key is
// checked at construction) and inject it into whatever owns the calls.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a new Anthropic client.
func New(config Config, logger *slog.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	// Set defaults
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = APIBaseURL
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 60 * time.Second
	}

	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger: logger,
	}, nil
}

// GenerateStructured sends the prompt to Claude and returns the structured
// JSON output. The schema hint, when present, is appended to the prompt as
// an output contract; the messages API has no server-side schema
// enforcement, so the response text is validated as JSON here and semantic
// validation stays with the caller.
func (c *Client) GenerateStructured(ctx context.Context, params ai.GenerateParams) (*ai.GenerateResult, error) {
	startTime := time.Now()

	if strings.TrimSpace(params.Prompt) == "" {
		return nil, ai.WrapError("generate", fmt.Errorf("%w: empty prompt", ai.EAIInvalidRequest))
	}

	req, err := c.buildRequest(ctx, params)
	if err != nil {
		return nil, ai.WrapError("build request", err)
	}

	resp, err := c.execute(req)
	if err != nil {
		return nil, ai.WrapError("execute request", err)
	}

	output, err := extractJSON(resp)
	if err != nil {
		return nil, ai.WrapError("parse response", err)
	}

	return &ai.GenerateResult{
		Output: output,
		Usage: ai.UsageInfo{
			Model:        c.config.Model,
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			CostCents:    calculateCost(resp.Usage.InputTokens, resp.Usage.OutputTokens),
			Duration:     time.Since(startTime),
		},
	}, nil
}

// buildRequest builds the HTTP request for a generation call.
func (c *Client) buildRequest(ctx context.Context, params ai.GenerateParams) (*http.Request, error) {
	prompt := params.Prompt
	if len(params.Schema) > 0 {
		prompt = fmt.Sprintf("%s\n\nReturn ONLY a JSON object conforming to this schema, no additional text:\n%s", prompt, params.Schema)
	}

	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := apiRequest{
		Model:     c.config.Model,
		MaxTokens: maxTokens,
		Messages: []apiMessage{
			{
				Role: "user",
				Content: []apiContent{
					{Type: "text", Text: prompt},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", APIVersion)

	return req, nil
}

// execute performs a single HTTP round trip.
func (c *Client) execute(req *http.Request) (*apiResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		// Network errors are typically retryable
		return nil, ai.EAIUnavailable
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(resp.StatusCode, bodyBytes)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &apiResp, nil
}

// mapHTTPError maps HTTP status codes to domain errors
func mapHTTPError(statusCode int, body []byte) error {
	var errResp apiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	switch statusCode {
	case http.StatusUnauthorized:
		return ai.EAIUnauthorized
	case http.StatusTooManyRequests:
		return ai.EAIRateLimit
	case http.StatusRequestTimeout:
		return ai.EAITimeout
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ai.EAIInvalidRequest, errResp.Error.Message)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ai.EAIUnavailable
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, errResp.Error.Message)
	}
}

// extractJSON pulls the text content out of the response and validates it
// as JSON. Models occasionally wrap output in a markdown code fence despite
// instructions; the fence is stripped before validation.
func extractJSON(resp *apiResponse) (json.RawMessage, error) {
	var textContent string
	for _, content := range resp.Content {
		if content.Type == "text" {
			textContent = content.Text
			break
		}
	}
	if textContent == "" {
		return nil, fmt.Errorf("%w: no text content in response", ai.EAIMalformedOutput)
	}

	trimmed := strings.TrimSpace(textContent)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("%w: %.120s", ai.EAIMalformedOutput, trimmed)
	}

	return json.RawMessage(trimmed), nil
}

// calculateCost calculates the cost in cents for the given token usage
func calculateCost(inputTokens, outputTokens int) int {
	inputCost := (inputTokens * PricingInputCents) / 1_000_000
	outputCost := (outputTokens * PricingOutputCents) / 1_000_000
	return inputCost + outputCost
}

// API request/response types

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Role    string             `json:"role"`
	Content []apiContentOutput `json:"content"`
	Model   string             `json:"model"`
	Usage   apiUsage           `json:"usage"`
}

type apiContentOutput struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiErrorResponse struct {
	Type  string   `json:"type"`
	Error apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
