package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
)

// UpdateGameInput is the payload of a game update request.
type UpdateGameInput struct {
	Principal  domain.Principal
	GameUUID   string
	Attributes map[string]any
}

// UpdateGameUseCase applies a partial update to a game. Developer-list
// changes go through the reconciler before any attribute is touched, so a
// rejected list leaves the record unchanged.
type UpdateGameUseCase struct {
	games      *service.GameService
	reconciler *service.Reconciler
}

// NewUpdateGameUseCase creates the use case.
func NewUpdateGameUseCase(games *service.GameService, reconciler *service.Reconciler) *UpdateGameUseCase {
	return &UpdateGameUseCase{games: games, reconciler: reconciler}
}

// Execute updates the game and returns its private document.
func (uc *UpdateGameUseCase) Execute(ctx context.Context, input UpdateGameInput) (map[string]any, error) {
	game, err := uc.games.Find(ctx, input.GameUUID)
	if err != nil {
		return nil, err
	}
	developers, err := uc.games.Developers(ctx, game.UUID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAccessGame(input.Principal, developers) {
		return nil, apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to access this game")
	}

	attrs := make(map[string]any, len(input.Attributes))
	for k, v := range input.Attributes {
		attrs[k] = v
	}

	if raw, present := attrs["developers"]; present {
		delete(attrs, "developers")
		desired := developerList(raw)
		if !domain.CanChangeDevelopers(input.Principal) {
			return nil, apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to change the developer list")
		}
		ok, err := uc.reconciler.Reconcile(ctx, game.UUID, developers, desired)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.Conflict(apperrors.CodeDeveloperList, "can't update game with this developer list")
		}
	}

	if len(attrs) > 0 {
		if err := game.Update(attrs); err != nil {
			return nil, err
		}
		if err := uc.games.Save(ctx, game); err != nil {
			return nil, err
		}
		logger.Debug("game updated", zap.String("game", game.UUID))
	}

	return uc.games.Document(ctx, game)
}
