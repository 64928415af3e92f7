package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type startSubscriptionRequest struct {
	CardToken string `json:"card_token"`
}

// StartSubscription handles POST /v1/games/:uuid/subscription. A fresh
// subscription answers 201; a game that is already subscribed answers 200
// without charging anything.
func (s *Server) StartSubscription(c *gin.Context) {
	game, _ := s.loadAccessibleGame(c)
	if game == nil {
		return
	}

	var req startSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			req = startSubscriptionRequest{}
		}
	}

	created, err := s.subscriptions.Start(c.Request.Context(), game, principalFrom(c), req.CardToken)
	if err != nil {
		c.Error(err)
		return
	}

	doc, err := s.games.Document(c.Request.Context(), game)
	if err != nil {
		c.Error(err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, doc)
}

// CancelSubscription handles DELETE /v1/games/:uuid/subscription. The
// subscription stays active until the end of the paid period.
func (s *Server) CancelSubscription(c *gin.Context) {
	game, _ := s.loadAccessibleGame(c)
	if game == nil {
		return
	}

	if err := s.subscriptions.Cancel(c.Request.Context(), game); err != nil {
		c.Error(err)
		return
	}

	doc, err := s.games.Document(c.Request.Context(), game)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
