package handlers

import (
	"net/http"
	"strconv"

	"github.com/Conceptual-Machines/uivariants-api/internal/history"
	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	store history.Store
}

func NewHistoryHandler(store history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List handles GET /api/v1/history?limit=N
func (h *HistoryHandler) List(c *gin.Context) {
	limit := maxHistoryPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if n < maxHistoryPageSize {
			limit = n
		}
	}

	results, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		logger.Error("Failed to list history", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// Clear handles DELETE /api/v1/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(c.Request.Context()); err != nil {
		logger.Error("Failed to clear history", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}
