package provider

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
)

// TokenSource caches the service's application-level token. Single writer,
// many readers, last write wins; staleness is self-healing through the
// reauth wrapper.
type TokenSource struct {
	auth         Auth
	clientID     string
	clientSecret string

	mu    sync.Mutex
	token string
}

// NewTokenSource creates a token source backed by the auth collaborator.
func NewTokenSource(auth Auth, clientID, clientSecret string) *TokenSource {
	return &TokenSource{auth: auth, clientID: clientID, clientSecret: clientSecret}
}

// Token returns the cached app token, fetching one if none is cached yet.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.token != "" {
		return ts.token, nil
	}
	return ts.refreshLocked(ctx)
}

// Refresh discards the cached token and fetches a new one.
func (ts *TokenSource) Refresh(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = ""
	return ts.refreshLocked(ctx)
}

func (ts *TokenSource) refreshLocked(ctx context.Context) (string, error) {
	token, err := ts.auth.CreateAppToken(ctx, ts.clientID, ts.clientSecret)
	if err != nil {
		return "", err
	}
	ts.token = token
	return token, nil
}

// WithReauth runs fn with the cached app token. On an unauthenticated
// failure it refreshes the token and retries exactly once; every other
// error propagates unchanged.
func (ts *TokenSource) WithReauth(ctx context.Context, fn func(token string) error) error {
	token, err := ts.Token(ctx)
	if err != nil {
		return err
	}

	err = fn(token)
	if err == nil || !errors.Is(err, apperrors.ErrUnauthenticated) {
		return err
	}

	logger.Debug("app token expired, refreshing")
	token, refreshErr := ts.Refresh(ctx)
	if refreshErr != nil {
		return refreshErr
	}
	return fn(token)
}
