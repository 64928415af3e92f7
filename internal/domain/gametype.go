package domain

import (
	"strings"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// gameType is one variant of the closed game-type registry.
type gameType interface {
	valid(g *Game, cfg map[string]any) bool
}

// urlGameType covers variants whose only requirement is a non-blank url.
type urlGameType struct{}

func (urlGameType) valid(_ *Game, cfg map[string]any) bool {
	url, _ := cfg["url"].(string)
	return strings.TrimSpace(url) != ""
}

// initialGameType is the unconfigured placeholder. It is valid on a freshly
// created game, or when the stored original type was already initial; a game
// can never be edited back into it.
type initialGameType struct{}

func (initialGameType) valid(g *Game, _ map[string]any) bool {
	return g.IsNew() || g.OriginalConfigurationType() == "initial"
}

// gameTypes maps canonical type tags to their variants. Closed set; unknown
// tags are an explicit validation failure, not a lookup error.
var gameTypes = map[string]gameType{
	"html5":   urlGameType{},
	"flash":   urlGameType{},
	"initial": initialGameType{},
}

// canonicalTag folds case, hyphens and underscores so that "HTML-5" and
// "html_5" resolve to the same variant.
func canonicalTag(tag string) string {
	tag = strings.ToLower(tag)
	tag = strings.ReplaceAll(tag, "-", "")
	return strings.ReplaceAll(tag, "_", "")
}

// ValidateConfiguration checks the game's type-specific configuration
// payload against its variant's rule.
func ValidateConfiguration(g *Game) error {
	cfg := g.configuration()
	rawTag, ok := cfg["type"].(string)
	if !ok || rawTag == "" {
		return apperrors.Validation("no game type set")
	}
	variant, ok := gameTypes[canonicalTag(rawTag)]
	if !ok {
		return apperrors.Validation("game type not found: " + rawTag)
	}
	if !variant.valid(g, cfg) {
		return apperrors.Validation("game configuration invalid")
	}
	return nil
}
