package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerHealthRoutes registers the liveness endpoint.
func registerHealthRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
