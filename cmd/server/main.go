package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rizzads/rizzads/internal"
	"github.com/rizzads/rizzads/internal/ai"
	"github.com/rizzads/rizzads/internal/ai/anthropic"
	aimock "github.com/rizzads/rizzads/internal/ai/mock"
	"github.com/rizzads/rizzads/internal/handler"
	"github.com/rizzads/rizzads/internal/metrics"
	"github.com/rizzads/rizzads/internal/middleware"
	"github.com/rizzads/rizzads/internal/retry"
	"github.com/rizzads/rizzads/internal/rules"
	"github.com/rizzads/rizzads/internal/service"
	"github.com/rizzads/rizzads/internal/storage"
	trmock "github.com/rizzads/rizzads/internal/translate/mock"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Load the compliance rule corpus
	corpus, err := rules.Load()
	if err != nil {
		return fmt.Errorf("rule corpus load failed: %w", err)
	}
	snap := corpus.Snapshot(rules.SnapshotFilter{})
	logger.Info("Rule corpus loaded",
		"platforms", len(snap.Platform),
		"countries", len(snap.Country),
		"industries", len(snap.Industry))

	// Initialize AI client
	var aiClient ai.Client
	switch cfg.AIProvider {
	case "anthropic":
		aiClient, err = anthropic.New(anthropic.Config{
			APIKey:         cfg.AnthropicAPIKey,
			Model:          cfg.AnthropicModel,
			RequestTimeout: cfg.AIRequestTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("anthropic client initialization failed: %w", err)
		}
	default:
		aiClient = aimock.New(logger)
	}
	logger.Info("AI client ready", "provider", cfg.AIProvider)

	policy := retry.Policy{
		MaxAttempts: cfg.AIMaxRetries,
		BaseDelay:   cfg.AIRetryBaseDelay,
	}

	// Initialize the report archive. With provider "off" results are
	// returned to callers but never persisted.
	var archive storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderLocal:
		archive, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
		}, logger)
		if err != nil {
			return fmt.Errorf("local storage initialization failed: %w", err)
		}
	case storage.ProviderR2:
		archive, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		}, logger)
		if err != nil {
			return fmt.Errorf("r2 storage initialization failed: %w", err)
		}
	}
	logger.Info("Report archive ready", "provider", cfg.StorageProvider)

	// Initialize services
	analyzer := service.NewAnalyzer(aiClient, policy, logger)
	complianceService := service.NewComplianceService(corpus, analyzer, archive, cfg.BatchConcurrency, logger)
	generatorService := service.NewGeneratorService(trmock.New(logger), aiClient, policy, logger)

	// Initialize middleware
	isSecure := cfg.Env != "development"
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	complianceHandler := handler.NewComplianceHandler(complianceService, logger)
	generateHandler := handler.NewGenerateHandler(generatorService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// API routes
	complianceHandler.RegisterRoutes(mux)
	generateHandler.RegisterRoutes(mux)

	// Apply the shared middleware stack to everything
	stack := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
		rateLimitMw.Limit,
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: stack(mux),
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
