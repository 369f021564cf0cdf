package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// AI Provider Configuration
	AIProvider       string // "anthropic" or "mock"
	AnthropicAPIKey  string
	AnthropicModel   string
	AIMaxRetries     int
	AIRetryBaseDelay time.Duration
	AIRequestTimeout time.Duration

	// Translation provider; only the mock engine ships for now
	TranslateProvider string

	// Compliance orchestration
	BatchConcurrency int // Concurrent AI calls per batch

	// Report archive. "off" keeps results ephemeral.
	StorageProvider  string // "local", "r2", or "off"
	LocalStoragePath string // Base directory for local report storage

	// R2 Archive (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// API rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// AI provider defaults
		AIProvider:       getEnv("AI_PROVIDER", "mock"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		AIMaxRetries:     getEnvInt("AI_MAX_RETRIES", 3),
		AIRetryBaseDelay: getEnvDuration("AI_RETRY_BASE_DELAY", 1*time.Second),
		AIRequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 60*time.Second),

		TranslateProvider: getEnv("TRANSLATE_PROVIDER", "mock"),

		BatchConcurrency: getEnvInt("COMPLIANCE_BATCH_CONCURRENCY", 3),

		// Archiving is an operator opt-in; checks are ephemeral by default
		StorageProvider:  getEnv("STORAGE_PROVIDER", "off"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./archive"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),

		// Rate limit defaults sized for interactive API use
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Validate AI provider configuration
	if cfg.AIProvider == "anthropic" {
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is 'anthropic'")
		}
	} else if cfg.AIProvider != "mock" {
		return nil, fmt.Errorf("AI_PROVIDER must be either 'anthropic' or 'mock', got: %s", cfg.AIProvider)
	}

	if cfg.TranslateProvider != "mock" {
		return nil, fmt.Errorf("TRANSLATE_PROVIDER must be 'mock', got: %s", cfg.TranslateProvider)
	}

	// Validate archive configuration
	switch cfg.StorageProvider {
	case "off", "local":
	case "r2":
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	default:
		return nil, fmt.Errorf("STORAGE_PROVIDER must be 'local', 'r2', or 'off', got: %s", cfg.StorageProvider)
	}

	if cfg.BatchConcurrency < 1 {
		return nil, fmt.Errorf("COMPLIANCE_BATCH_CONCURRENCY must be at least 1, got: %d", cfg.BatchConcurrency)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
