package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// apiClient is the shared JSON-over-HTTP plumbing of the backend clients.
// Every request carries an explicit timeout; the collaborators themselves
// impose no cancellation contract of their own.
type apiClient struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	return &apiClient{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}
}

// statusError is a non-2xx response that is neither 401 nor 404. Callers
// that care about specific statuses (the graph's invalid-relation condition)
// inspect it; everyone else treats it as fatal.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.status, e.message)
}

// do performs a JSON request. 401 maps to ErrUnauthenticated (consumed by
// the reauth wrapper), 404 to ErrNotFound; other non-2xx statuses become a
// statusError.
func (c *apiClient) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, apperrors.ErrUnauthenticated)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, apperrors.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &statusError{status: resp.StatusCode, message: errorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts the error field of a JSON error body, falling back
// to the raw payload.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
