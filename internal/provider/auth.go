package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// AuthClient talks to the auth backend that owns accounts and OAuth tokens.
type AuthClient struct {
	api *apiClient
}

// NewAuthClient creates an auth client for the given base URL.
func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{api: newAPIClient(baseURL, timeout)}
}

var _ Auth = (*AuthClient)(nil)

// TokenOwner resolves a bearer token to its principal. Unknown or expired
// tokens yield nil, nil; the caller decides whether anonymity is acceptable.
func (c *AuthClient) TokenOwner(ctx context.Context, token string) (*domain.Principal, error) {
	var payload struct {
		UUID  string `json:"uuid"`
		Email string `json:"email"`
		Type  string `json:"type"`
	}
	err := c.api.do(ctx, http.MethodGet, "/v1/me", token, nil, &payload)
	if errors.Is(err, apperrors.ErrUnauthenticated) || errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Fatal(err, "auth token lookup failed")
	}
	return &domain.Principal{
		UUID:   payload.UUID,
		Email:  payload.Email,
		System: payload.Type == "app",
	}, nil
}

// CreateAppToken issues a service-level token from OAuth app credentials.
func (c *AuthClient) CreateAppToken(ctx context.Context, clientID, clientSecret string) (string, error) {
	body := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     clientID,
		"client_secret": clientSecret,
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.api.do(ctx, http.MethodPost, "/v1/token/app", "", body, &payload); err != nil {
		return "", apperrors.Fatal(err, "app token request failed")
	}
	return payload.Token, nil
}
