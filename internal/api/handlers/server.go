// Package handlers implements the HTTP handlers of the devcenter backend.
// Handlers decode the request, delegate to a use case or service, and push
// failures into the error-handling middleware.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/quarter-spiral/devcenter-backend/internal/api/middleware"
	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
	"github.com/quarter-spiral/devcenter-backend/internal/usecase"
)

// Server bundles the route handlers with their dependencies.
type Server struct {
	games         *service.GameService
	developers    *service.DeveloperService
	subscriptions *service.SubscriptionService
	insights      *service.InsightsService
	reconciler    *service.Reconciler
	createGame    *usecase.CreateGameUseCase
	updateGame    *usecase.UpdateGameUseCase
	destroyGame   *usecase.DestroyGameUseCase
}

// ServerDeps holds all dependencies for creating a Server. Manual DI, no
// framework.
type ServerDeps struct {
	Games         *service.GameService
	Developers    *service.DeveloperService
	Subscriptions *service.SubscriptionService
	Insights      *service.InsightsService
	Reconciler    *service.Reconciler
	CreateGame    *usecase.CreateGameUseCase
	UpdateGame    *usecase.UpdateGameUseCase
	DestroyGame   *usecase.DestroyGameUseCase
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		games:         deps.Games,
		developers:    deps.Developers,
		subscriptions: deps.Subscriptions,
		insights:      deps.Insights,
		reconciler:    deps.Reconciler,
		createGame:    deps.CreateGame,
		updateGame:    deps.UpdateGame,
		destroyGame:   deps.DestroyGame,
	}
}

// principalFrom returns the authenticated principal. Routes behind
// RequirePrincipal always have one.
func principalFrom(c *gin.Context) domain.Principal {
	principal, _ := middleware.Principal(c)
	return principal
}

// loadAccessibleGame finds the game and verifies the principal may access
// it. It returns the game and its developer list, or pushes the error and
// returns nil.
func (s *Server) loadAccessibleGame(c *gin.Context) (*domain.Game, []string) {
	game, err := s.games.Find(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		c.Error(err)
		return nil, nil
	}
	developers, err := s.games.Developers(c.Request.Context(), game.UUID)
	if err != nil {
		c.Error(err)
		return nil, nil
	}
	if !domain.CanAccessGame(principalFrom(c), developers) {
		c.Error(errForbiddenGameAccess)
		return nil, nil
	}
	return game, developers
}
