package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GameInsights handles GET /v1/games/:uuid/insights.
func (s *Server) GameInsights(c *gin.Context) {
	game, _ := s.loadAccessibleGame(c)
	if game == nil {
		return
	}

	insights, err := s.insights.GameInsights(c.Request.Context(), game.UUID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, insights)
}
