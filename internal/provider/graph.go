package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// GraphClient talks to the graph backend that stores entity roles and
// relationships.
type GraphClient struct {
	api    *apiClient
	tokens *TokenSource
}

// NewGraphClient creates a graph client for the given base URL.
func NewGraphClient(baseURL string, timeout time.Duration, tokens *TokenSource) *GraphClient {
	return &GraphClient{api: newAPIClient(baseURL, timeout), tokens: tokens}
}

var _ Graph = (*GraphClient)(nil)

func (c *GraphClient) AddRole(ctx context.Context, entityID, role string) error {
	err := c.tokens.WithReauth(ctx, func(token string) error {
		path := "/v1/entities/" + url.PathEscape(entityID) + "/roles/" + url.PathEscape(role)
		return c.api.do(ctx, http.MethodPost, path, token, nil, nil)
	})
	if err != nil {
		return apperrors.Fatal(err, "graph add role failed")
	}
	return nil
}

func (c *GraphClient) RemoveRole(ctx context.Context, entityID, role string) error {
	err := c.tokens.WithReauth(ctx, func(token string) error {
		path := "/v1/entities/" + url.PathEscape(entityID) + "/roles/" + url.PathEscape(role)
		return c.api.do(ctx, http.MethodDelete, path, token, nil, nil)
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Fatal(err, "graph remove role failed")
	}
	return nil
}

// ListRelated returns the UUIDs related to entityID over relation in the
// given direction ("incoming" or "outgoing").
func (c *GraphClient) ListRelated(ctx context.Context, entityID, relation, direction string) ([]string, error) {
	var payload struct {
		Entities []string `json:"entities"`
	}
	err := c.tokens.WithReauth(ctx, func(token string) error {
		path := fmt.Sprintf("/v1/entities/%s/relationships/%s?direction=%s",
			url.PathEscape(entityID), url.PathEscape(relation), url.QueryEscape(direction))
		return c.api.do(ctx, http.MethodGet, path, token, nil, &payload)
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Fatal(err, "graph list related failed")
	}
	return payload.Entities, nil
}

// AddRelationship creates the relation edge from fromID to toID. A
// structural rejection by the graph surfaces as ErrInvalidRelation.
func (c *GraphClient) AddRelationship(ctx context.Context, fromID, toID, relation string) error {
	err := c.tokens.WithReauth(ctx, func(token string) error {
		path := relationshipPath(fromID, toID, relation)
		return c.api.do(ctx, http.MethodPost, path, token, map[string]any{"meta": map[string]any{}}, nil)
	})
	if invalid, reason := invalidRelation(err); invalid {
		return fmt.Errorf("%s: %w", reason, apperrors.ErrInvalidRelation)
	}
	if err != nil {
		return apperrors.Fatal(err, "graph add relationship failed")
	}
	return nil
}

// RemoveRelationship deletes the relation edge from fromID to toID.
func (c *GraphClient) RemoveRelationship(ctx context.Context, fromID, toID, relation string) error {
	err := c.tokens.WithReauth(ctx, func(token string) error {
		return c.api.do(ctx, http.MethodDelete, relationshipPath(fromID, toID, relation), token, nil, nil)
	})
	if invalid, reason := invalidRelation(err); invalid {
		return fmt.Errorf("%s: %w", reason, apperrors.ErrInvalidRelation)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Fatal(err, "graph remove relationship failed")
	}
	return nil
}

// UUIDsByRole lists every entity carrying the given role.
func (c *GraphClient) UUIDsByRole(ctx context.Context, role string) ([]string, error) {
	var payload struct {
		Entities []string `json:"entities"`
	}
	err := c.tokens.WithReauth(ctx, func(token string) error {
		return c.api.do(ctx, http.MethodGet, "/v1/roles/"+url.PathEscape(role), token, nil, &payload)
	})
	if err != nil {
		return nil, apperrors.Fatal(err, "graph role listing failed")
	}
	return payload.Entities, nil
}

// DeleteEntity removes the entity with all of its roles and relationships.
func (c *GraphClient) DeleteEntity(ctx context.Context, entityID string) error {
	err := c.tokens.WithReauth(ctx, func(token string) error {
		return c.api.do(ctx, http.MethodDelete, "/v1/entities/"+url.PathEscape(entityID), token, nil, nil)
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Fatal(err, "graph delete entity failed")
	}
	return nil
}

func relationshipPath(fromID, toID, relation string) string {
	return fmt.Sprintf("/v1/entities/%s/relationships/%s/%s",
		url.PathEscape(fromID), url.PathEscape(relation), url.PathEscape(toID))
}

// invalidRelation reports whether err is the graph rejecting a relationship
// as structurally invalid (a 422 on a relationship call), as opposed to an
// infrastructure failure.
func invalidRelation(err error) (bool, string) {
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusUnprocessableEntity {
		return true, se.message
	}
	return false, ""
}
