package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

// SubscriptionService drives the game subscription lifecycle against the
// payment gateway. The game aggregate itself carries the subscription
// projection; the gateway is the system of record for billing.
type SubscriptionService struct {
	payment    provider.PaymentGateway
	games      *GameService
	plan       string
	production bool
}

// NewSubscriptionService creates a subscription service billing against the
// given plan.
func NewSubscriptionService(payment provider.PaymentGateway, games *GameService, plan string, production bool) *SubscriptionService {
	return &SubscriptionService{payment: payment, games: games, plan: plan, production: production}
}

// Start subscribes the game on behalf of the acting principal. It returns
// true when a subscription was created and false when the game was already
// subscribed with no scheduled end, in which case nothing is charged.
// A phasing-out subscription is re-subscribed, clearing the scheduled end.
func (s *SubscriptionService) Start(ctx context.Context, game *domain.Game, principal domain.Principal, cardToken string) (bool, error) {
	if game.EndOfSubscription == 0 && game.HasActiveSubscription(time.Now(), s.production) {
		return false, nil
	}
	if cardToken == "" {
		return false, apperrors.Payment("no payment source provided", nil)
	}

	description := fmt.Sprintf("User UUID: %s | Game UUID: %s", principal.UUID, game.UUID)
	customer, err := s.payment.CreateCustomer(ctx, description, principal.Email, cardToken)
	if err != nil {
		return false, apperrors.Payment("could not create the subscription", err)
	}

	sub, err := s.payment.UpdateSubscription(ctx, customer.ID, s.plan)
	if err != nil {
		return false, apperrors.Payment("could not create the subscription", err)
	}

	game.SubscriptionCustomerID = customer.ID
	game.SubscriptionType = "test"
	if sub.Live {
		game.SubscriptionType = "live"
	}
	game.EndOfSubscription = 0

	if err := s.games.Save(ctx, game); err != nil {
		return false, err
	}

	logger.Info("subscription started",
		zap.String("game", game.UUID),
		zap.String("customer", customer.ID),
		zap.Bool("live", sub.Live),
	)
	return true, nil
}

// Cancel schedules the game's subscription to end at the current billing
// period. The subscription stays active until then.
func (s *SubscriptionService) Cancel(ctx context.Context, game *domain.Game) error {
	if game.SubscriptionCustomerID == "" {
		return apperrors.NotFound(apperrors.CodeSubscriptionNotFound, "game has no subscription")
	}

	customer, err := s.payment.RetrieveCustomer(ctx, game.SubscriptionCustomerID)
	if err != nil {
		return apperrors.Payment("could not cancel the subscription", err)
	}
	if customer == nil {
		return apperrors.NotFound(apperrors.CodeSubscriptionNotFound, "game has no subscription")
	}

	sub, err := s.payment.CancelAtPeriodEnd(ctx, customer.ID)
	if err != nil {
		return apperrors.Payment("could not cancel the subscription", err)
	}
	if !sub.CancelAtPeriodEnd {
		return apperrors.Payment("could not cancel the subscription", nil)
	}

	game.EndOfSubscription = sub.CurrentPeriodEnd
	if err := s.games.Save(ctx, game); err != nil {
		return err
	}

	logger.Info("subscription phasing out",
		zap.String("game", game.UUID),
		zap.Int64("end", sub.CurrentPeriodEnd),
	)
	return nil
}
