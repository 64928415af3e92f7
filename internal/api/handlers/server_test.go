package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/quarter-spiral/devcenter-backend/internal/api/middleware"
	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/worker"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
	"github.com/quarter-spiral/devcenter-backend/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.Init("error", "console"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type apiFixture struct {
	router   *gin.Engine
	auth     *provider.MockAuth
	graph    *provider.MockGraph
	payment  *provider.MockPayment
	tracking *provider.MockTracking
	games    *service.GameService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	pool, err := worker.New("test", 4)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Shutdown(time.Second) })

	datastore := provider.NewMockDatastore()
	graph := provider.NewMockGraph()
	auth := provider.NewMockAuth()
	payment := provider.NewMockPayment()
	tracking := provider.NewMockTracking()

	games := service.NewGameService(datastore, graph, provider.NewMockCache(), pool, "http://canvas.example.com", time.Minute, false)
	reconciler := service.NewReconciler(graph)
	server := NewServer(ServerDeps{
		Games:         games,
		Developers:    service.NewDeveloperService(graph),
		Subscriptions: service.NewSubscriptionService(payment, games, "indie-monthly", false),
		Insights:      service.NewInsightsService(tracking),
		Reconciler:    reconciler,
		CreateGame:    usecase.NewCreateGameUseCase(games, reconciler),
		UpdateGame:    usecase.NewUpdateGameUseCase(games, reconciler),
		DestroyGame:   usecase.NewDestroyGameUseCase(games),
	})

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler(), middleware.Authenticate(auth))
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

	f := &apiFixture{
		router:   router,
		auth:     auth,
		graph:    graph,
		payment:  payment,
		tracking: tracking,
		games:    games,
	}
	f.auth.AddToken("dev-1-token", &domain.Principal{UUID: "dev-1", Email: "dev1@example.com"})
	f.auth.AddToken("dev-2-token", &domain.Principal{UUID: "dev-2", Email: "dev2@example.com"})
	f.auth.AddToken("system-token", &domain.Principal{UUID: "app", System: true})
	f.grantDeveloper(t, "dev-1", "dev-2")
	return f
}

func (f *apiFixture) grantDeveloper(t *testing.T, uuids ...string) {
	t.Helper()
	for _, uuid := range uuids {
		require.NoError(t, f.graph.AddRole(context.Background(), uuid, service.RoleDeveloper))
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeDoc(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func gameAttrs() map[string]any {
	return map[string]any{
		"name":        "Galaxy Defender",
		"description": "Defend the galaxy",
		"category":    "Shooter",
		"developers":  []string{"dev-1"},
		"configuration": map[string]any{
			"type": "html5",
			"url":  "http://games.example.com/galaxy-defender",
		},
	}
}

func (f *apiFixture) createGame(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/v1/games", "dev-1-token", gameAttrs())
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeDoc(t, rec)["uuid"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/games", "", gameAttrs())
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/games/some-game", "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateAndFetchGame(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodGet, "/v1/games/"+uuid, "dev-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decodeDoc(t, rec)
	require.Equal(t, "Galaxy Defender", doc["name"])
	require.Equal(t, []any{"dev-1"}, doc["developers"])
	require.NotEmpty(t, doc["secret"])
	require.Equal(t, false, doc["subscription"])
}

func TestCreateGameValidationError(t *testing.T) {
	f := newAPIFixture(t)

	attrs := gameAttrs()
	delete(attrs, "name")
	rec := f.do(t, http.MethodPost, "/v1/games", "dev-1-token", attrs)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "name")
}

func TestFetchGameForbiddenForOutsiders(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodGet, "/v1/games/"+uuid, "dev-2-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFetchGameNotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/v1/games/no-such-game", "dev-1-token", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateGameEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodPut, "/v1/games/"+uuid, "dev-1-token", map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Renamed", decodeDoc(t, rec)["name"])
}

func TestUpdateGameMassAssignmentRejected(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodPut, "/v1/games/"+uuid, "dev-1-token", map[string]any{"secret": "stolen"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "can not mass update")
}

func TestDestroyGameEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodDelete, "/v1/games/"+uuid, "dev-1-token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/games/"+uuid, "dev-1-token", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicListingIsAnonymous(t *testing.T) {
	f := newAPIFixture(t)
	f.createGame(t)

	rec := f.do(t, http.MethodGet, "/v1/public/games", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Games []map[string]any `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Games, 1)
	require.Equal(t, "Galaxy Defender", listing.Games[0]["name"])
	require.NotContains(t, listing.Games[0], "secret")
	require.NotContains(t, listing.Games[0], "developers")
}

func TestPublicListingFilteredByUUIDs(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodGet, "/v1/public/games?games="+uuid+",no-such-game", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Games []map[string]any `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Games, 1)
	require.Equal(t, uuid, listing.Games[0]["uuid"])
	require.NotContains(t, listing.Games[0], "secret")
}

func TestPublicListingFilteredByBody(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodGet, "/v1/public/games", "", map[string]any{"games": []string{uuid, "no-such-game"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Games []map[string]any `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Games, 1)
	require.Equal(t, uuid, listing.Games[0]["uuid"])
}

func TestDeveloperGamesListing(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodGet, "/v1/developers/dev-1/games", "dev-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Games []map[string]any `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Games, 1)
	require.Equal(t, uuid, listing.Games[0]["uuid"])

	// one developer cannot browse another one's games
	rec = f.do(t, http.MethodGet, "/v1/developers/dev-1/games", "dev-2-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGameDeveloperManagement(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	// only system tokens may rewire developer lists
	rec := f.do(t, http.MethodPost, "/v1/games/"+uuid+"/developers/dev-2", "dev-1-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/games/"+uuid+"/developers/dev-2", "system-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeDoc(t, rec)
	require.ElementsMatch(t, []any{"dev-1", "dev-2"}, doc["developers"])

	rec = f.do(t, http.MethodDelete, "/v1/games/"+uuid+"/developers/dev-1", "system-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = decodeDoc(t, rec)
	require.Equal(t, []any{"dev-2"}, doc["developers"])
}

func TestGameDeveloperManagementRejectsNonDevelopers(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)

	rec := f.do(t, http.MethodPost, "/v1/games/"+uuid+"/developers/stranger", "system-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "developer list")

	// the original list survives the rejection
	rec = f.do(t, http.MethodGet, "/v1/games/"+uuid, "dev-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []any{"dev-1"}, decodeDoc(t, rec)["developers"])
}

func TestDeveloperRoleEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/developers/account-9", "system-token", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, f.graph.HasRole("account-9", service.RoleDeveloper))

	rec = f.do(t, http.MethodDelete, "/v1/developers/account-9", "system-token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.False(t, f.graph.HasRole("account-9", service.RoleDeveloper))

	// accounts may not promote somebody else
	rec = f.do(t, http.MethodPost, "/v1/developers/account-9", "dev-1-token", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGameInsightsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	uuid := f.createGame(t)
	f.tracking.Players[uuid] = map[string]any{"daily": 12, "monthly": 310}

	rec := f.do(t, http.MethodGet, "/v1/games/"+uuid+"/insights", "dev-1-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decodeDoc(t, rec)
	players := doc["players"].(map[string]any)
	require.EqualValues(t, 12, players["daily"])
	require.Contains(t, doc, "impressions")
}
