package usecase

import (
	"context"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
)

// DestroyGameInput is the payload of a game deletion request.
type DestroyGameInput struct {
	Principal domain.Principal
	GameUUID  string
}

// DestroyGameUseCase removes a game record and its graph entity.
type DestroyGameUseCase struct {
	games *service.GameService
}

// NewDestroyGameUseCase creates the use case.
func NewDestroyGameUseCase(games *service.GameService) *DestroyGameUseCase {
	return &DestroyGameUseCase{games: games}
}

// Execute destroys the game.
func (uc *DestroyGameUseCase) Execute(ctx context.Context, input DestroyGameInput) error {
	game, err := uc.games.Find(ctx, input.GameUUID)
	if err != nil {
		return err
	}
	developers, err := uc.games.Developers(ctx, game.UUID)
	if err != nil {
		return err
	}
	if !domain.CanAccessGame(input.Principal, developers) {
		return apperrors.Forbidden(apperrors.CodeForbidden, "not allowed to access this game")
	}
	return uc.games.Destroy(ctx, game)
}
