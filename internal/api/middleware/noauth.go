package middleware

import (
	"github.com/Conceptual-Machines/uivariants-api/internal/config"
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for AUTH_MODE=none.
// It allows all requests without authentication.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Logged as the user for every request
		c.Set("user_id_str", "anonymous")
		c.Next()
	}
}

// Auth picks the middleware for the configured AUTH_MODE
func Auth(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsGatewayMode() {
		return GatewayAuth()
	}
	return NoAuth()
}
