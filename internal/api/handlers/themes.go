package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/gin-gonic/gin"
)

// ThemesHandler serves the catalog in delivery order
func ThemesHandler(themes []models.StyleTheme) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"themes": themes})
	}
}
