// Package usecase provides the application use cases of the devcenter
// backend. Use cases own authorization and the multi-collaborator
// orchestration; services stay single-concern underneath them.
package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
)

// CreateGameInput is the payload of a game creation request. Attributes is
// the raw attribute mapping; the developer list rides inside it under
// "developers".
type CreateGameInput struct {
	Principal  domain.Principal
	Attributes map[string]any
}

// CreateGameUseCase creates a game and connects its initial developer list.
// The datastore write and the graph edges cannot be changed atomically, so
// a rejected developer list compensates by destroying the fresh record.
type CreateGameUseCase struct {
	games      *service.GameService
	reconciler *service.Reconciler
}

// NewCreateGameUseCase creates the use case.
func NewCreateGameUseCase(games *service.GameService, reconciler *service.Reconciler) *CreateGameUseCase {
	return &CreateGameUseCase{games: games, reconciler: reconciler}
}

// Execute creates the game and returns its private document.
func (uc *CreateGameUseCase) Execute(ctx context.Context, input CreateGameInput) (map[string]any, error) {
	attrs := make(map[string]any, len(input.Attributes))
	for k, v := range input.Attributes {
		attrs[k] = v
	}
	developers := developerList(attrs["developers"])
	delete(attrs, "developers")

	if len(developers) == 0 {
		return nil, apperrors.Validation("game must have at least one developer")
	}
	if !domain.CanCreateGame(input.Principal, developers) {
		return nil, apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to create this game")
	}
	if category, _ := attrs["category"].(string); strings.TrimSpace(category) == "" {
		return nil, apperrors.Validation("game cannot be created without a category")
	}

	game := domain.NewGame(attrs)
	if err := uc.games.Create(ctx, game); err != nil {
		return nil, err
	}

	ok, err := uc.reconciler.Reconcile(ctx, game.UUID, nil, developers)
	if err != nil {
		return nil, err
	}
	if !ok {
		if destroyErr := uc.games.Destroy(ctx, game); destroyErr != nil {
			logger.Error("could not destroy game after rejected developer list",
				zap.String("game", game.UUID),
				zap.Error(destroyErr),
			)
		}
		return nil, apperrors.Conflict(apperrors.CodeDeveloperList, "can't create game with this developer list")
	}

	if err := uc.games.Register(ctx, game); err != nil {
		return nil, err
	}

	logger.Info("game created",
		zap.String("game", game.UUID),
		zap.Strings("developers", developers),
	)
	return uc.games.Document(ctx, game)
}

// developerList normalizes the raw developers attribute.
func developerList(value any) []string {
	switch list := value.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, entry := range list {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
