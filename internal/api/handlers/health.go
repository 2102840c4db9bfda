package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/history"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandler struct {
	store   history.Store
	backend string
}

func NewHealthHandler(store history.Store, backend string) *HealthHandler {
	return &HealthHandler{store: store, backend: backend}
}

// HealthCheck returns the health status of the API and its history backend
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	overall, historyStatus := "healthy", "healthy"
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		overall, historyStatus = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": overall,
		"history": gin.H{
			"backend": h.backend,
			"status":  historyStatus,
		},
	})
}
