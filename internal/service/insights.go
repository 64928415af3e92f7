package service

import (
	"context"

	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

// InsightsService aggregates per-game usage data from the tracking backend.
type InsightsService struct {
	tracking provider.Tracking
}

// NewInsightsService creates an insights service.
func NewInsightsService(tracking provider.Tracking) *InsightsService {
	return &InsightsService{tracking: tracking}
}

// GameInsights returns the player counts and impressions of a game.
func (s *InsightsService) GameInsights(ctx context.Context, gameUUID string) (map[string]any, error) {
	players, err := s.tracking.PlayerCounts(ctx, gameUUID)
	if err != nil {
		return nil, err
	}
	impressions, err := s.tracking.Impressions(ctx, gameUUID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"players":     players,
		"impressions": impressions,
	}, nil
}
