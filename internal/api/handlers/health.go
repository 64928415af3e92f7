package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /v1/health, the load-balancer liveness probe.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
