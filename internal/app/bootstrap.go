// Package app is the composition root: it binds the real collaborator
// clients to the services and handlers. Bootstrap stays orchestration-only.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/quarter-spiral/devcenter-backend/internal/api/handlers"
	"github.com/quarter-spiral/devcenter-backend/internal/config"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/worker"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
	"github.com/quarter-spiral/devcenter-backend/internal/usecase"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine

	pool  *worker.Pool
	cache *provider.RedisCache
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(cfg *config.Config) (*Application, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	timeout := cfg.Backends.RequestTimeout
	auth := provider.NewAuthClient(cfg.Backends.AuthURL, timeout)
	tokens := provider.NewTokenSource(auth, cfg.OAuth.ClientID, cfg.OAuth.ClientSecret)
	datastore := provider.NewDatastoreClient(cfg.Backends.DatastoreURL, timeout, tokens)
	graph := provider.NewGraphClient(cfg.Backends.GraphURL, timeout, tokens)
	tracking := provider.NewTrackingClient(cfg.Backends.TrackingURL, timeout, tokens)
	payment := provider.NewPaymentClient(cfg.Payment.GatewayURL, cfg.Payment.SecretKey, timeout)

	var cache provider.Cache = provider.NoopCache{}
	var redisCache *provider.RedisCache
	if cfg.Cache.RedisAddr != "" {
		redisCache = provider.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		cache = redisCache
	}

	pool, err := worker.New("graph-hydration", cfg.Worker.GraphPoolSize)
	if err != nil {
		return nil, fmt.Errorf("init worker pool: %w", err)
	}

	games := service.NewGameService(datastore, graph, cache, pool, cfg.Canvas.AppURL, cfg.Cache.ListingTTL, cfg.IsProduction())
	reconciler := service.NewReconciler(graph)
	developers := service.NewDeveloperService(graph)
	subscriptions := service.NewSubscriptionService(payment, games, cfg.Payment.Plan, cfg.IsProduction())
	insights := service.NewInsightsService(tracking)

	server := handlers.NewServer(handlers.ServerDeps{
		Games:         games,
		Developers:    developers,
		Subscriptions: subscriptions,
		Insights:      insights,
		Reconciler:    reconciler,
		CreateGame:    usecase.NewCreateGameUseCase(games, reconciler),
		UpdateGame:    usecase.NewUpdateGameUseCase(games, reconciler),
		DestroyGame:   usecase.NewDestroyGameUseCase(games),
	})

	return &Application{
		Config: cfg,
		Router: newRouter(server, auth),
		pool:   pool,
		cache:  redisCache,
	}, nil
}
