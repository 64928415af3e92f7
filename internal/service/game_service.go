package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/worker"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

// RoleGame marks game entities in the graph.
const RoleGame = "game"

// recordKey nests game records inside their datastore document.
const recordKey = "game"

// GameService handles game lookup, persistence and document projection.
type GameService struct {
	datastore  provider.Datastore
	graph      provider.Graph
	cache      provider.Cache
	pool       *worker.Pool
	canvasURL  string
	listingTTL time.Duration
	production bool

	// lastSave folds into the public-listing cache key so every save
	// invalidates the memoized listing.
	lastSave atomic.Int64
}

// NewGameService creates a game service.
func NewGameService(datastore provider.Datastore, graph provider.Graph, cache provider.Cache, pool *worker.Pool, canvasURL string, listingTTL time.Duration, production bool) *GameService {
	return &GameService{
		datastore:  datastore,
		graph:      graph,
		cache:      cache,
		pool:       pool,
		canvasURL:  canvasURL,
		listingTTL: listingTTL,
		production: production,
	}
}

// Find loads the game stored under uuid.
func (s *GameService) Find(ctx context.Context, uuid string) (*domain.Game, error) {
	doc, err := s.datastore.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrGameNotFoundf(uuid)
	}
	record, ok := doc[recordKey].(map[string]any)
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeNotAGame, "entity "+uuid+" is not a game")
	}
	return domain.GameFromRecord(uuid, record), nil
}

// FindBatch loads the games stored under the given uuids. Missing documents
// and documents that are not games are skipped.
func (s *GameService) FindBatch(ctx context.Context, uuids []string) ([]*domain.Game, error) {
	docs, err := s.datastore.GetBatch(ctx, uuids)
	if err != nil {
		return nil, err
	}
	games := make([]*domain.Game, 0, len(uuids))
	for _, uuid := range uuids {
		doc, ok := docs[uuid]
		if !ok {
			continue
		}
		record, ok := doc[recordKey].(map[string]any)
		if !ok {
			continue
		}
		games = append(games, domain.GameFromRecord(uuid, record))
	}
	return games, nil
}

// All loads every game known to the graph.
func (s *GameService) All(ctx context.Context) ([]*domain.Game, error) {
	uuids, err := s.graph.UUIDsByRole(ctx, RoleGame)
	if err != nil {
		return nil, err
	}
	return s.FindBatch(ctx, uuids)
}

// Developers returns the UUIDs of the game's developers.
func (s *GameService) Developers(ctx context.Context, gameUUID string) ([]string, error) {
	devs, err := s.graph.ListRelated(ctx, gameUUID, RelationDevelops, "incoming")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDeveloperList, "could not load developer list", http.StatusBadGateway)
	}
	return devs, nil
}

// Create validates and stores a fresh game, assigning its UUID from the
// datastore. The game stays in its creation lifecycle until Register is
// called; the creation workflow may still destroy it in between.
func (s *GameService) Create(ctx context.Context, game *domain.Game) error {
	if err := game.Validate(); err != nil {
		return err
	}
	uuid, err := s.datastore.Create(ctx, map[string]any{})
	if err != nil {
		return err
	}
	game.UUID = uuid
	if err := s.datastore.Set(ctx, uuid, map[string]any{recordKey: game.ToRecord()}); err != nil {
		return err
	}
	s.lastSave.Add(1)
	return nil
}

// Register marks the game entity in the graph and completes the creation
// lifecycle.
func (s *GameService) Register(ctx context.Context, game *domain.Game) error {
	if err := s.graph.AddRole(ctx, game.UUID, RoleGame); err != nil {
		return err
	}
	game.MarkSaved()
	return nil
}

// Save validates and persists the game, then invalidates the public listing.
func (s *GameService) Save(ctx context.Context, game *domain.Game) error {
	if err := game.Validate(); err != nil {
		return err
	}
	if err := s.datastore.Set(ctx, game.UUID, map[string]any{recordKey: game.ToRecord()}); err != nil {
		return err
	}
	game.MarkSaved()
	s.lastSave.Add(1)
	return nil
}

// Destroy empties the game's document and removes its graph entity.
func (s *GameService) Destroy(ctx context.Context, game *domain.Game) error {
	if err := s.datastore.Set(ctx, game.UUID, map[string]any{}); err != nil {
		return err
	}
	if err := s.graph.DeleteEntity(ctx, game.UUID); err != nil {
		return err
	}
	s.lastSave.Add(1)
	logger.Info("game destroyed", zap.String("game", game.UUID))
	return nil
}

// Document builds the private document of a single game, including its
// developer list and computed venue state.
func (s *GameService) Document(ctx context.Context, game *domain.Game) (map[string]any, error) {
	developers, err := s.Developers(ctx, game.UUID)
	if err != nil {
		return nil, err
	}
	return game.PrivateDocument(developers, s.canvasURL, time.Now(), s.production), nil
}

// PrivateDocuments builds the private documents of the given games,
// hydrating the per-game developer lists with bounded concurrency.
func (s *GameService) PrivateDocuments(ctx context.Context, games []*domain.Game) ([]map[string]any, error) {
	docs := make([]map[string]any, len(games))
	now := time.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, game := range games {
		i, game := i, game
		wg.Add(1)
		submitErr := s.pool.Submit(ctx, func(ctx context.Context) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			developers, err := s.Developers(ctx, game.UUID)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			docs[i] = game.PrivateDocument(developers, s.canvasURL, now, s.production)
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit document hydration: %w", submitErr)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}

// PublicDocuments builds the public documents of the requested games.
// Unknown uuids and non-game entities are skipped.
func (s *GameService) PublicDocuments(ctx context.Context, uuids []string) ([]map[string]any, error) {
	games, err := s.FindBatch(ctx, uuids)
	if err != nil {
		return nil, err
	}
	docs := make([]map[string]any, 0, len(games))
	for _, game := range games {
		docs = append(docs, game.PublicDocument(s.canvasURL))
	}
	return docs, nil
}

// PublicListing returns the JSON array of all public game documents,
// memoized in the cache until the next save.
func (s *GameService) PublicListing(ctx context.Context) ([]byte, error) {
	key := fmt.Sprintf("devcenter:public-games:%d", s.lastSave.Load())
	return s.cache.Fetch(ctx, key, s.listingTTL, func(ctx context.Context) ([]byte, error) {
		games, err := s.All(ctx)
		if err != nil {
			return nil, err
		}
		docs := make([]map[string]any, 0, len(games))
		for _, game := range games {
			docs = append(docs, game.PublicDocument(s.canvasURL))
		}
		payload, err := json.Marshal(map[string]any{"games": docs})
		if err != nil {
			return nil, fmt.Errorf("encode public listing: %w", err)
		}
		return payload, nil
	})
}
