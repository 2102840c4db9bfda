package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/api"
	"github.com/Conceptual-Machines/uivariants-api/internal/config"
	"github.com/Conceptual-Machines/uivariants-api/internal/generation"
	"github.com/Conceptual-Machines/uivariants-api/internal/history"
	"github.com/Conceptual-Machines/uivariants-api/internal/llm"
	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/metrics"
	"github.com/Conceptual-Machines/uivariants-api/internal/observability"
	"github.com/Conceptual-Machines/uivariants-api/internal/prompt"
	"github.com/Conceptual-Machines/uivariants-api/internal/sanitizer"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	sentryFlushTimeout = 2 * time.Second

	connectionTestSystemPrompt = "You are answering a connectivity check. Reply with the single word OK."
	connectionTestMaxTokens    = 16
	connectionTestTimeout      = 10 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables
	envFileErr := godotenv.Load()

	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if envFileErr != nil {
		logger.Debug("No .env file found, using environment variables", nil)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "uivariants-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			logger.Error("Failed to initialize Sentry", err, nil)
		} else {
			logger.Info("Sentry initialized", logger.Fields{
				"environment": cfg.Environment,
				"release":     releaseVersion,
			})
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		logger.Warn("Sentry not configured (SENTRY_DSN not set)", nil)
	}

	ctx := context.Background()

	tracer := observability.InitializeLangfuse(ctx, cfg)

	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled)
	if err != nil {
		logger.Error("CloudWatch metrics disabled", err, nil)
	}
	recorder := metrics.NewRecorder(metrics.NewPrometheus(prometheus.DefaultRegisterer), cloudwatch)

	store, err := history.New(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("failed to initialize history store: %w", err)
	}
	logger.Info("History store ready", logger.Fields{
		"backend": cfg.HistoryBackend,
		"limit":   cfg.HistoryLimit,
	})

	builder := prompt.NewPromptBuilder()
	providers := llm.NewProviderFactory(llm.Options{
		SystemPrompt: builder.SystemPrompt(),
		Timeout:      cfg.ProviderTimeout,
		Recorder:     recorder,
	})
	connectionCheck := llm.NewProviderFactory(llm.Options{
		SystemPrompt: connectionTestSystemPrompt,
		MaxTokens:    connectionTestMaxTokens,
		Timeout:      connectionTestTimeout,
	})

	orchestrator := generation.NewOrchestrator(providers,
		generation.WithPromptBuilder(builder),
		generation.WithMinViable(cfg.MinViableVariants),
		generation.WithRetryBudget(cfg.RetryBudget),
		generation.WithConcurrency(cfg.Concurrency),
		generation.WithSanitizer(sanitizer.New(cfg.MinContentLength)),
		generation.WithRecorder(recorder),
		generation.WithTracer(tracer),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(api.Dependencies{
		Generator:      orchestrator,
		ConnectionTest: connectionCheck,
		History:        store,
		Themes:         orchestrator.Themes(),
		Policy:         orchestrator.Policy(),
		Recorder:       recorder,
		Gatherer:       prometheus.DefaultGatherer,
	}, cfg, GetVersion())

	logger.Info("Starting server", logger.Fields{
		"port":          cfg.Port,
		"version":       releaseVersion,
		"auth_mode":     cfg.AuthMode,
		"min_viable":    cfg.MinViableVariants,
		"retry_budget":  cfg.RetryBudget,
		"provider_wait": cfg.ProviderTimeout.String(),
	})
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization":  true,
		"cookie":         true,
		"x-api-key":      true,
		"x-goog-api-key": true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
