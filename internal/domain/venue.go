package domain

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// embedHeightMargin is the extra chrome the canvas app adds around an
// embedded game.
const embedHeightMargin = 140

// venue is one variant of the closed venue registry. Each instance sees its
// raw config sub-map and the owning game.
type venue interface {
	id() string
	valid(cfg map[string]any, g *Game) bool
	ready(cfg map[string]any, g *Game) bool
}

// baseVenue is always valid and ready when enabled.
type baseVenue struct {
	venueID string
}

func (v baseVenue) id() string                     { return v.venueID }
func (baseVenue) valid(map[string]any, *Game) bool { return true }
func (baseVenue) ready(map[string]any, *Game) bool { return true }

// facebookVenue is ready only once both app credentials are configured.
type facebookVenue struct{}

func (facebookVenue) id() string                       { return "facebook" }
func (facebookVenue) valid(map[string]any, *Game) bool { return true }

func (facebookVenue) ready(cfg map[string]any, _ *Game) bool {
	appID, _ := cfg["app-id"].(string)
	appSecret, _ := cfg["app-secret"].(string)
	return strings.TrimSpace(appID) != "" && strings.TrimSpace(appSecret) != ""
}

// embeddedVenue is served by the canvas app as an iframe.
type embeddedVenue struct{}

func (embeddedVenue) id() string                       { return "embedded" }
func (embeddedVenue) valid(map[string]any, *Game) bool { return true }
func (embeddedVenue) ready(map[string]any, *Game) bool { return true }

// venuesByName maps venue map keys to variants. galaxy-spiral is a legacy
// alias kept for games registered before the venue was renamed.
var venuesByName = map[string]venue{
	"facebook":      facebookVenue{},
	"embedded":      embeddedVenue{},
	"spiral-galaxy": baseVenue{venueID: "spiral-galaxy"},
	"galaxy-spiral": baseVenue{venueID: "galaxy-spiral"},
}

// ValidateVenues checks every venue entry of the game: the sub-map must be a
// mapping carrying the boolean key enabled, the name must resolve to a known
// variant, and the variant's own rule must hold. The first failure in venue
// name order wins.
func ValidateVenues(g *Game) error {
	names := make([]string, 0, len(g.venues()))
	for name := range g.venues() {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg, ok := g.Venues[name].(map[string]any)
		if !ok {
			return apperrors.Validation(fmt.Sprintf("ill-formed data for venue '%s'", name))
		}
		if _, ok := cfg["enabled"].(bool); !ok {
			return apperrors.Validation(fmt.Sprintf("ill-formed data for venue '%s'", name))
		}
		variant, ok := venuesByName[name]
		if !ok {
			return apperrors.Validation(fmt.Sprintf("venue '%s' does not exist", name))
		}
		if !variant.valid(cfg, g) {
			return apperrors.Validation(fmt.Sprintf("venue '%s' invalid", name))
		}
	}
	return nil
}

// ComputeVenues produces, per venue entry, the stored config merged with a
// derived computed block. Read path only; never persisted. canvasURL
// parameterizes the embedded iframe code.
func ComputeVenues(g *Game, canvasURL string) map[string]map[string]any {
	computed := make(map[string]map[string]any, len(g.venues()))
	for name := range g.venues() {
		cfg, ok := g.Venues[name].(map[string]any)
		if !ok {
			continue
		}
		variant, ok := venuesByName[name]
		if !ok {
			continue
		}

		out := make(map[string]any, len(cfg)+1)
		for k, v := range cfg {
			out[k] = v
		}
		block := map[string]any{
			"venue": variant.id(),
			"ready": variant.ready(cfg, g),
		}
		if variant.id() == "embedded" {
			if enabled, _ := cfg["enabled"].(bool); enabled {
				block["code"] = embedCode(g, canvasURL)
			}
		}
		out["computed"] = block
		computed[name] = out
	}
	return computed
}

// PublicVenues filters the computed venue map down to names that are both
// enabled and ready, for the anonymous listing.
func PublicVenues(computed map[string]map[string]any) []string {
	names := make([]string, 0, len(computed))
	for name, cfg := range computed {
		enabled, _ := cfg["enabled"].(bool)
		block, _ := cfg["computed"].(map[string]any)
		ready, _ := block["ready"].(bool)
		if enabled && ready {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// EmbedCode returns the embedded venue's iframe markup from a computed venue
// map, or "" when the venue is absent or disabled.
func EmbedCode(computed map[string]map[string]any) string {
	embedded, ok := computed["embedded"]
	if !ok {
		return ""
	}
	block, _ := embedded["computed"].(map[string]any)
	code, _ := block["code"].(string)
	return code
}

// embedCode renders the iframe markup sized from the game's first configured
// size.
func embedCode(g *Game, canvasURL string) string {
	width, height := 600, 460
	if sizes, ok := g.configuration()["sizes"].([]map[string]any); ok && len(sizes) > 0 {
		if w, ok := sizes[0]["width"].(int); ok {
			width = w
		}
		if h, ok := sizes[0]["height"].(int); ok {
			height = h
		}
	}
	height += embedHeightMargin

	return fmt.Sprintf(
		`<iframe width="%d" height="%d" src="%s/v1/games/%s/embedded" style="padding:0px; margin:0px; background-color:#000; border-width:0px;" frameborder="0" align="top"></iframe>`,
		width, height, canvasURL, g.UUID,
	)
}
