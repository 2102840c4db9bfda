package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/generation"
	"github.com/Conceptual-Machines/uivariants-api/internal/llm"
	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	provider llm.Provider
	timeout  time.Duration
}

func NewConnectionHandler(provider llm.Provider) *ConnectionHandler {
	return &ConnectionHandler{
		provider: provider,
		timeout:  connectionTestTimeout,
	}
}

type ConnectionTestRequest struct {
	Settings models.ConnectionSettings `json:"settings"`
}

type ConnectionTestResponse struct {
	OK        bool   `json:"ok"`
	Provider  string `json:"provider,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Test handles POST /api/v1/connection/test with one short provider call
func (h *ConnectionHandler) Test(c *gin.Context) {
	var req ConnectionTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	settings := req.Settings.Normalized()
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ConnectionTestResponse{OK: false, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	reply, err := h.provider.Complete(ctx, connectionTestPrompt, settings)
	latency := time.Since(start)

	label := generation.ProviderLabel(settings.BaseURL)
	fields := logger.WithContext(c)
	fields["provider"] = label
	fields["model"] = settings.ModelName
	fields["latency_ms"] = latency.Milliseconds()

	if err != nil {
		fields["error"] = err.Error()
		logger.Warn("Connection test failed", fields)
		c.JSON(http.StatusOK, ConnectionTestResponse{OK: false, Provider: label, Error: err.Error()})
		return
	}
	if strings.TrimSpace(reply) == "" {
		c.JSON(http.StatusOK, ConnectionTestResponse{OK: false, Provider: label, Error: "provider returned an empty reply"})
		return
	}

	logger.Info("Connection test succeeded", fields)
	c.JSON(http.StatusOK, ConnectionTestResponse{OK: true, Provider: label, LatencyMS: latency.Milliseconds()})
}
