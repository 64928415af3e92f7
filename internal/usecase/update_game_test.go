package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/service"
)

func createTestGame(t *testing.T, f *fixture, developers ...string) string {
	t.Helper()
	f.grantDeveloper(t, developers...)
	doc, err := NewCreateGameUseCase(f.games, f.reconciler).Execute(context.Background(), CreateGameInput{
		Principal:  domain.Principal{UUID: "app", System: true},
		Attributes: validCreateAttrs(developers...),
	})
	require.NoError(t, err)
	return doc["uuid"].(string)
}

func TestUpdateGame(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	doc, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal:  domain.Principal{UUID: "dev-1"},
		GameUUID:   uuid,
		Attributes: map[string]any{"name": "Galaxy Defender 2"},
	})
	require.NoError(t, err)
	require.Equal(t, "Galaxy Defender 2", doc["name"])
	require.Equal(t, "Defend the galaxy", doc["description"])

	reloaded, err := f.games.Find(context.Background(), uuid)
	require.NoError(t, err)
	require.Equal(t, "Galaxy Defender 2", reloaded.Name)
}

func TestUpdateGameForbiddenForOutsiders(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	_, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal:  domain.Principal{UUID: "dev-2"},
		GameUUID:   uuid,
		Attributes: map[string]any{"name": "Hijacked"},
	})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, 403, appErr.HTTPStatus)
}

func TestUpdateGameMissing(t *testing.T) {
	f := newFixture(t)
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	_, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal:  domain.Principal{UUID: "dev-1"},
		GameUUID:   "no-such-game",
		Attributes: map[string]any{"name": "Ghost"},
	})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeGameNotFound, appErr.Code)
}

func TestUpdateGameRejectsForbiddenAttributes(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	_, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal:  domain.Principal{UUID: "dev-1"},
		GameUUID:   uuid,
		Attributes: map[string]any{"name": "Renamed", "secret": "stolen"},
	})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeMassAssignment, appErr.Code)
	require.Contains(t, appErr.Message, "secret")

	// the whole update is rejected, including the legal part
	reloaded, err := f.games.Find(context.Background(), uuid)
	require.NoError(t, err)
	require.Equal(t, "Galaxy Defender", reloaded.Name)
}

func TestUpdateGameDeveloperListRequiresSystem(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	f.grantDeveloper(t, "dev-2")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	_, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal:  domain.Principal{UUID: "dev-1"},
		GameUUID:   uuid,
		Attributes: map[string]any{"developers": []string{"dev-1", "dev-2"}},
	})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, 403, appErr.HTTPStatus)
}

func TestUpdateGameDeveloperList(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	f.grantDeveloper(t, "dev-2")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	doc, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal:  domain.Principal{UUID: "app", System: true},
		GameUUID:   uuid,
		Attributes: map[string]any{"developers": []string{"dev-2"}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"dev-2"}, doc["developers"])
}

func TestUpdateGameRejectedDeveloperListLeavesGameUntouched(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)

	_, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal: domain.Principal{UUID: "app", System: true},
		GameUUID:  uuid,
		Attributes: map[string]any{
			"name":       "Never applied",
			"developers": []string{"dev-1", "stranger"},
		},
	})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeDeveloperList, appErr.Code)

	reloaded, err := f.games.Find(context.Background(), uuid)
	require.NoError(t, err)
	require.Equal(t, "Galaxy Defender", reloaded.Name)

	devs, err := f.games.Developers(context.Background(), uuid)
	require.NoError(t, err)
	require.Equal(t, []string{"dev-1"}, devs)
}

func TestUpdateGameVenuesAreMerged(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewUpdateGameUseCase(f.games, f.reconciler)
	principal := domain.Principal{UUID: "dev-1"}

	_, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal: principal,
		GameUUID:  uuid,
		Attributes: map[string]any{
			"venues": map[string]any{"embedded": map[string]any{"enabled": true}},
		},
	})
	require.NoError(t, err)

	doc, err := uc.Execute(context.Background(), UpdateGameInput{
		Principal: principal,
		GameUUID:  uuid,
		Attributes: map[string]any{
			"venues": map[string]any{"facebook": map[string]any{"enabled": true, "app-id": "123", "app-secret": "s3cret"}},
		},
	})
	require.NoError(t, err)

	venues := doc["venues"].(map[string]map[string]any)
	require.Contains(t, venues, "embedded")
	require.Contains(t, venues, "facebook")
	require.Equal(t, true, venues["embedded"]["enabled"])
}

func TestDestroyGame(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewDestroyGameUseCase(f.games)

	require.NoError(t, uc.Execute(context.Background(), DestroyGameInput{
		Principal: domain.Principal{UUID: "dev-1"},
		GameUUID:  uuid,
	}))

	_, err := f.games.Find(context.Background(), uuid)
	require.Error(t, err)
	require.False(t, f.graph.HasRole(uuid, service.RoleGame))
}

func TestDestroyGameForbiddenForOutsiders(t *testing.T) {
	f := newFixture(t)
	uuid := createTestGame(t, f, "dev-1")
	uc := NewDestroyGameUseCase(f.games)

	err := uc.Execute(context.Background(), DestroyGameInput{
		Principal: domain.Principal{UUID: "dev-2"},
		GameUUID:  uuid,
	})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, 403, appErr.HTTPStatus)

	_, err = f.games.Find(context.Background(), uuid)
	require.NoError(t, err)
}
