package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/usecase"
)

var errForbiddenGameAccess = apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to access this game")

// CreateGame handles POST /v1/games.
func (s *Server) CreateGame(c *gin.Context) {
	var attrs map[string]any
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.Error(apperrors.Validation("request body must be a JSON object"))
		return
	}

	doc, err := s.createGame.Execute(c.Request.Context(), usecase.CreateGameInput{
		Principal:  principalFrom(c),
		Attributes: attrs,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GetGame handles GET /v1/games/:uuid.
func (s *Server) GetGame(c *gin.Context) {
	game, _ := s.loadAccessibleGame(c)
	if game == nil {
		return
	}
	doc, err := s.games.Document(c.Request.Context(), game)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateGame handles PUT /v1/games/:uuid.
func (s *Server) UpdateGame(c *gin.Context) {
	var attrs map[string]any
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.Error(apperrors.Validation("request body must be a JSON object"))
		return
	}

	doc, err := s.updateGame.Execute(c.Request.Context(), usecase.UpdateGameInput{
		Principal:  principalFrom(c),
		GameUUID:   c.Param("uuid"),
		Attributes: attrs,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DestroyGame handles DELETE /v1/games/:uuid.
func (s *Server) DestroyGame(c *gin.Context) {
	err := s.destroyGame.Execute(c.Request.Context(), usecase.DestroyGameInput{
		Principal: principalFrom(c),
		GameUUID:  c.Param("uuid"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDevelopedGames handles GET /v1/developers/:uuid/games.
func (s *Server) ListDevelopedGames(c *gin.Context) {
	developerUUID := c.Param("uuid")
	if !domain.CanManageDeveloper(principalFrom(c), developerUUID) {
		c.Error(apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to list this developer's games"))
		return
	}

	uuids, err := s.developers.GameUUIDs(c.Request.Context(), developerUUID)
	if err != nil {
		c.Error(err)
		return
	}
	games, err := s.games.FindBatch(c.Request.Context(), uuids)
	if err != nil {
		c.Error(err)
		return
	}
	docs, err := s.games.PrivateDocuments(c.Request.Context(), games)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": docs})
}

// AddGameDeveloper handles POST /v1/games/:uuid/developers/:developer.
func (s *Server) AddGameDeveloper(c *gin.Context) {
	s.changeGameDeveloper(c, true)
}

// RemoveGameDeveloper handles DELETE /v1/games/:uuid/developers/:developer.
func (s *Server) RemoveGameDeveloper(c *gin.Context) {
	s.changeGameDeveloper(c, false)
}

func (s *Server) changeGameDeveloper(c *gin.Context, add bool) {
	if !domain.CanChangeDevelopers(principalFrom(c)) {
		c.Error(apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to change the developer list"))
		return
	}

	game, developers := s.loadAccessibleGame(c)
	if game == nil {
		return
	}

	developerUUID := c.Param("developer")
	desired := make([]string, 0, len(developers)+1)
	for _, dev := range developers {
		if dev != developerUUID {
			desired = append(desired, dev)
		}
	}
	if add {
		desired = append(desired, developerUUID)
	}

	ok, err := s.reconciler.Reconcile(c.Request.Context(), game.UUID, developers, desired)
	if err != nil {
		c.Error(err)
		return
	}
	if !ok {
		c.Error(apperrors.Conflict(apperrors.CodeDeveloperList, "can't change the developer list this way"))
		return
	}

	doc, err := s.games.Document(c.Request.Context(), game)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
