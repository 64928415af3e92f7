package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestAPIClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized maps to sentinel",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
			},
		},
		{
			name:   "not found maps to sentinel",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, apperrors.ErrNotFound)
			},
		},
		{
			name:   "other failures carry the status",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				var se *statusError
				require.ErrorAs(t, err, &se)
				require.Equal(t, http.StatusUnprocessableEntity, se.status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := newAPIClient(srv.URL, time.Second)
			tt.check(t, client.do(context.Background(), http.MethodGet, "/v1/thing", "token", nil, nil))
		})
	}
}

func TestAPIClientSendsBearerToken(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newAPIClient(srv.URL, time.Second)
	require.NoError(t, client.do(context.Background(), http.MethodGet, "/v1/me", "secret-token", nil, nil))
	require.Equal(t, "Bearer secret-token", seen)
}

func TestGraphClientInvalidRelation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/token/app" {
			w.Write([]byte(`{"token":"app-token"}`))
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"relation develops is invalid"}`))
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewAuthClient(srv.URL, time.Second), "id", "secret")
	graph := NewGraphClient(srv.URL, time.Second, tokens)

	err := graph.AddRelationship(context.Background(), "dev-1", "game-1", "develops")
	require.ErrorIs(t, err, apperrors.ErrInvalidRelation)
	require.Contains(t, err.Error(), "relation develops is invalid")
}

func TestGraphClientServerFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/token/app" {
			w.Write([]byte(`{"token":"app-token"}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewAuthClient(srv.URL, time.Second), "id", "secret")
	graph := NewGraphClient(srv.URL, time.Second, tokens)

	err := graph.AddRelationship(context.Background(), "dev-1", "game-1", "develops")
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrInvalidRelation)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
}

func TestTokenSourceReauthRetriesOnce(t *testing.T) {
	issued := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/token/app" {
			issued++
			w.Write([]byte(`{"token":"token"}`))
			return
		}
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewAuthClient(srv.URL, time.Second), "id", "secret")

	calls := 0
	err := tokens.WithReauth(context.Background(), func(string) error {
		calls++
		return apperrors.ErrUnauthenticated
	})
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	require.Equal(t, 2, calls)
	require.Equal(t, 2, issued)
}

func TestTokenSourceCachesToken(t *testing.T) {
	issued := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued++
		w.Write([]byte(`{"token":"token"}`))
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewAuthClient(srv.URL, time.Second), "id", "secret")
	for i := 0; i < 3; i++ {
		err := tokens.WithReauth(context.Background(), func(string) error { return nil })
		require.NoError(t, err)
	}
	require.Equal(t, 1, issued)
}

func TestDatastoreClientGetMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/token/app" {
			w.Write([]byte(`{"token":"token"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tokens := NewTokenSource(NewAuthClient(srv.URL, time.Second), "id", "secret")
	store := NewDatastoreClient(srv.URL, time.Second, tokens)

	doc, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestMockGraphRejectsNonDeveloperRelation(t *testing.T) {
	graph := NewMockGraph()
	ctx := context.Background()

	err := graph.AddRelationship(ctx, "nobody", "game-1", "develops")
	require.ErrorIs(t, err, apperrors.ErrInvalidRelation)

	require.NoError(t, graph.AddRole(ctx, "dev-1", "developer"))
	require.NoError(t, graph.AddRelationship(ctx, "dev-1", "game-1", "develops"))

	devs, err := graph.ListRelated(ctx, "game-1", "develops", "incoming")
	require.NoError(t, err)
	require.Equal(t, []string{"dev-1"}, devs)

	games, err := graph.ListRelated(ctx, "dev-1", "develops", "outgoing")
	require.NoError(t, err)
	require.Equal(t, []string{"game-1"}, games)
}

func TestMockGraphFailureInjection(t *testing.T) {
	graph := NewMockGraph()
	ctx := context.Background()
	require.NoError(t, graph.AddRole(ctx, "dev-1", "developer"))

	boom := errors.New("graph down")
	graph.FailNext = boom
	require.ErrorIs(t, graph.AddRelationship(ctx, "dev-1", "game-1", "develops"), boom)

	// injection is consumed by the failing call
	require.NoError(t, graph.AddRelationship(ctx, "dev-1", "game-1", "develops"))
}
