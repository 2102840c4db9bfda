package api

import (
	"github.com/Conceptual-Machines/uivariants-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/uivariants-api/internal/api/middleware"
	"github.com/Conceptual-Machines/uivariants-api/internal/config"
	"github.com/Conceptual-Machines/uivariants-api/internal/generation"
	"github.com/Conceptual-Machines/uivariants-api/internal/history"
	"github.com/Conceptual-Machines/uivariants-api/internal/llm"
	"github.com/Conceptual-Machines/uivariants-api/internal/metrics"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Generator      handlers.Generator
	ConnectionTest llm.Provider
	History        history.Store
	Themes         []models.StyleTheme
	Policy         generation.Policy
	Recorder       *metrics.Recorder
	Gatherer       prometheus.Gatherer
}

func SetupRouter(deps Dependencies, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.History, cfg.HistoryBackend)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoints
	metricsHandler := handlers.NewMetricsHandler(version, handlers.ServicePolicy{
		Themes:          len(deps.Themes),
		MinViable:       deps.Policy.MinViable,
		RetryBudget:     deps.Policy.RetryBudget,
		Concurrency:     deps.Policy.Concurrency,
		MinContentChars: deps.Policy.MinContentLength,
		ProviderTimeout: cfg.ProviderTimeout,
		HistoryBackend:  cfg.HistoryBackend,
		HistoryLimit:    cfg.HistoryLimit,
		AuthMode:        cfg.AuthMode,
	})
	router.GET("/api/metrics", metricsHandler.GetMetrics)
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.Use(apimiddleware.Auth(cfg))
	{
		generationHandler := handlers.NewGenerationHandler(deps.Generator, deps.History)
		v1.POST("/generations", generationHandler.Generate)

		connectionHandler := handlers.NewConnectionHandler(deps.ConnectionTest)
		v1.POST("/connection/test", connectionHandler.Test)

		historyHandler := handlers.NewHistoryHandler(deps.History)
		v1.GET("/history", historyHandler.List)
		v1.DELETE("/history", historyHandler.Clear)

		v1.GET("/themes", handlers.ThemesHandler(deps.Themes))
	}

	return router
}
