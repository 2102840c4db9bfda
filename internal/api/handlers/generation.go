package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Conceptual-Machines/uivariants-api/internal/generation"
	"github.com/Conceptual-Machines/uivariants-api/internal/history"
	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Generator is the orchestrator as seen by the HTTP layer
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

type GenerationHandler struct {
	generator Generator
	store     history.Store
}

func NewGenerationHandler(generator Generator, store history.Store) *GenerationHandler {
	return &GenerationHandler{
		generator: generator,
		store:     store,
	}
}

// Generate handles POST /api/v1/generations
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	fields := logger.WithContext(c)
	fields["model"] = req.Settings.ModelName

	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		writeGenerationError(c, err, fields)
		return
	}

	if err := h.store.Append(c.Request.Context(), *result); err != nil {
		logger.Error("Failed to persist generation history", err, fields)
	}

	c.JSON(http.StatusOK, result)
}

func writeGenerationError(c *gin.Context, err error, fields logger.Fields) {
	var cfgErr *models.ConfigurationError
	var insufficient *generation.InsufficientVariantsError

	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": cfgErr.Error(),
			"field": cfgErr.Field,
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      insufficient.Error(),
			"successes":  insufficient.Successes,
			"required":   insufficient.Required,
			"failures":   insufficient.Failures,
			"request_id": c.GetString("request_id"),
		})
	default:
		logger.Error("Generation failed unexpectedly", err, fields)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Internal server error",
			"request_id": c.GetString("request_id"),
		})
	}
}
