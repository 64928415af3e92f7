package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quarter-spiral/devcenter-backend/internal/api/handlers"
	"github.com/quarter-spiral/devcenter-backend/internal/api/middleware"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

func newRouter(server *handlers.Server, auth provider.Auth) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		corsPolicy(),
		middleware.ErrorHandler(),
		middleware.Authenticate(auth),
	)

	v1 := router.Group("/v1")
	v1.GET("/health", server.Health)
	v1.GET("/public/games", server.ListPublicGames)

	authed := v1.Group("", middleware.RequirePrincipal())
	authed.POST("/games", server.CreateGame)
	authed.GET("/games/:uuid", server.GetGame)
	authed.PUT("/games/:uuid", server.UpdateGame)
	authed.DELETE("/games/:uuid", server.DestroyGame)
	authed.GET("/games/:uuid/insights", server.GameInsights)
	authed.POST("/games/:uuid/subscription", server.StartSubscription)
	authed.DELETE("/games/:uuid/subscription", server.CancelSubscription)
	authed.POST("/games/:uuid/developers/:developer", server.AddGameDeveloper)
	authed.DELETE("/games/:uuid/developers/:developer", server.RemoveGameDeveloper)
	authed.POST("/developers/:uuid", server.PromoteDeveloper)
	authed.DELETE("/developers/:uuid", server.DemoteDeveloper)
	authed.GET("/developers/:uuid/games", server.ListDevelopedGames)

	return router
}

// corsPolicy allows browser-based developer tools to call the API with
// their bearer tokens from any origin.
func corsPolicy() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Authorization", "Content-Type", middleware.RequestIDHeader}
	return cors.New(cfg)
}
