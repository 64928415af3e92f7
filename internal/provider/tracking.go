package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// TrackingClient talks to the tracking backend behind game insights.
type TrackingClient struct {
	api    *apiClient
	tokens *TokenSource
}

// NewTrackingClient creates a tracking client for the given base URL.
func NewTrackingClient(baseURL string, timeout time.Duration, tokens *TokenSource) *TrackingClient {
	return &TrackingClient{api: newAPIClient(baseURL, timeout), tokens: tokens}
}

var _ Tracking = (*TrackingClient)(nil)

func (c *TrackingClient) PlayerCounts(ctx context.Context, gameUUID string) (map[string]any, error) {
	return c.metrics(ctx, gameUUID, "players")
}

func (c *TrackingClient) Impressions(ctx context.Context, gameUUID string) (map[string]any, error) {
	return c.metrics(ctx, gameUUID, "impressions")
}

func (c *TrackingClient) metrics(ctx context.Context, gameUUID, metric string) (map[string]any, error) {
	var payload map[string]any
	err := c.tokens.WithReauth(ctx, func(token string) error {
		path := "/v1/games/" + url.PathEscape(gameUUID) + "/metrics/" + url.PathEscape(metric)
		return c.api.do(ctx, http.MethodGet, path, token, nil, &payload)
	})
	if err != nil {
		return nil, apperrors.Fatal(err, "tracking lookup failed")
	}
	return payload, nil
}
