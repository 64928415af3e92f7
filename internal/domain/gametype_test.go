package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialTypeValidOnCreation(t *testing.T) {
	attrs := validGameAttrs()
	attrs["configuration"] = map[string]any{"type": "initial"}
	g := NewGame(attrs)
	require.NoError(t, ValidateConfiguration(g))
}

func TestInitialTypeValidWhenStoredTypeWasInitial(t *testing.T) {
	attrs := validGameAttrs()
	attrs["configuration"] = map[string]any{"type": "initial"}
	record := NewGame(attrs).ToRecord()

	g := GameFromRecord("game-1", record)
	require.False(t, g.IsNew())
	require.NoError(t, ValidateConfiguration(g))
}

func TestInitialTypeNeverValidAsTransitionTarget(t *testing.T) {
	// Once a game has left the initial type it can never be edited back.
	record := NewGame(validGameAttrs()).ToRecord()
	g := GameFromRecord("game-1", record)

	require.NoError(t, g.Update(map[string]any{
		"configuration": map[string]any{"type": "initial"},
	}))
	err := ValidateConfiguration(g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "game configuration invalid")
}

func TestCanonicalTagFolding(t *testing.T) {
	for _, tag := range []string{"html5", "HTML5", "html-5", "html_5"} {
		attrs := validGameAttrs()
		attrs["configuration"] = map[string]any{"type": tag, "url": "http://example.com/game"}
		require.NoError(t, ValidateConfiguration(NewGame(attrs)), "tag %q", tag)
	}
}

func TestBlankURLInvalid(t *testing.T) {
	attrs := validGameAttrs()
	attrs["configuration"] = map[string]any{"type": "html5", "url": "   "}
	require.Error(t, ValidateConfiguration(NewGame(attrs)))
}
