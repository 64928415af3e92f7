package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// DatastoreClient talks to the datastore backend. All calls authenticate
// with the service's own app token through the reauth wrapper.
type DatastoreClient struct {
	api    *apiClient
	tokens *TokenSource
}

// NewDatastoreClient creates a datastore client for the given base URL.
func NewDatastoreClient(baseURL string, timeout time.Duration, tokens *TokenSource) *DatastoreClient {
	return &DatastoreClient{api: newAPIClient(baseURL, timeout), tokens: tokens}
}

var _ Datastore = (*DatastoreClient)(nil)

// Get returns the document stored under key, or nil when absent.
func (c *DatastoreClient) Get(ctx context.Context, key string) (map[string]any, error) {
	var doc map[string]any
	err := c.tokens.WithReauth(ctx, func(token string) error {
		return c.api.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(key), token, nil, &doc)
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Fatal(err, "datastore get failed")
	}
	return doc, nil
}

// GetBatch returns the documents for the given keys; absent keys are missing
// from the result.
func (c *DatastoreClient) GetBatch(ctx context.Context, keys []string) (map[string]map[string]any, error) {
	if len(keys) == 0 {
		return map[string]map[string]any{}, nil
	}
	var docs map[string]map[string]any
	err := c.tokens.WithReauth(ctx, func(token string) error {
		path := "/v1/documents?keys=" + url.QueryEscape(strings.Join(keys, ","))
		return c.api.do(ctx, http.MethodGet, path, token, nil, &docs)
	})
	if err != nil {
		return nil, apperrors.Fatal(err, "datastore batch get failed")
	}
	return docs, nil
}

// Set replaces the document stored under key.
func (c *DatastoreClient) Set(ctx context.Context, key string, doc map[string]any) error {
	err := c.tokens.WithReauth(ctx, func(token string) error {
		return c.api.do(ctx, http.MethodPut, "/v1/documents/"+url.PathEscape(key), token, doc, nil)
	})
	if err != nil {
		return apperrors.Fatal(err, "datastore set failed")
	}
	return nil
}

// Create stores a new document and returns its assigned key.
func (c *DatastoreClient) Create(ctx context.Context, doc map[string]any) (string, error) {
	var created struct {
		Key string `json:"key"`
	}
	err := c.tokens.WithReauth(ctx, func(token string) error {
		return c.api.do(ctx, http.MethodPost, "/v1/documents", token, doc, &created)
	})
	if err != nil {
		return "", apperrors.Fatal(err, "datastore create failed")
	}
	return created.Key, nil
}
