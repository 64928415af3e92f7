package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanManageDeveloper(t *testing.T) {
	user := Principal{UUID: "dev-1"}
	system := Principal{UUID: "app-1", System: true}

	require.True(t, CanManageDeveloper(user, "dev-1"))
	require.False(t, CanManageDeveloper(user, "dev-2"))
	require.True(t, CanManageDeveloper(system, "dev-2"))
}

func TestCanCreateGame(t *testing.T) {
	user := Principal{UUID: "dev-1"}
	system := Principal{UUID: "app-1", System: true}

	require.True(t, CanCreateGame(user, []string{"dev-1"}))
	require.False(t, CanCreateGame(user, []string{"dev-2"}))
	// Even including yourself, adding others needs system privileges.
	require.False(t, CanCreateGame(user, []string{"dev-1", "dev-2"}))
	require.True(t, CanCreateGame(system, []string{"dev-1", "dev-2"}))
}

func TestCanAccessGame(t *testing.T) {
	user := Principal{UUID: "dev-1"}
	system := Principal{UUID: "app-1", System: true}

	require.True(t, CanAccessGame(user, []string{"dev-2", "dev-1"}))
	require.False(t, CanAccessGame(user, []string{"dev-2"}))
	require.True(t, CanAccessGame(system, nil))
}

func TestCanChangeDevelopers(t *testing.T) {
	require.False(t, CanChangeDevelopers(Principal{UUID: "dev-1"}))
	require.True(t, CanChangeDevelopers(Principal{UUID: "app-1", System: true}))
}
