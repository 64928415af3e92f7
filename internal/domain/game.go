// Package domain holds the Game aggregate and the pure rules around it:
// game-type and venue validation, size sanitization, the subscription
// projection and the authorization policy. Nothing in this package talks to
// the network.
package domain

import (
	"crypto/rand"
	"sort"
	"strings"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// massAssignable is the fixed whitelist of attribute names a mass update may
// touch. uuid, secret and the subscription fields are deliberately absent.
var massAssignable = map[string]bool{
	"name":                    true,
	"description":             true,
	"screenshots":             true,
	"configuration":           true,
	"developer_configuration": true,
	"venues":                  true,
	"category":                true,
	"credits":                 true,
	"credits_url":             true,
}

// Game is the aggregate root. The developer set is not stored here; it is a
// live view on the graph backend owned by the service layer.
type Game struct {
	UUID                   string
	Name                   string
	Description            string
	Category               string
	Credits                string
	CreditsURL             string
	Screenshots            []string
	Configuration          map[string]any
	DeveloperConfiguration map[string]any
	Venues                 map[string]any
	Secret                 string
	SubscriptionType       string
	SubscriptionCustomerID string
	EndOfSubscription      int64 // unix seconds, 0 when no end is scheduled

	newGame  bool
	original map[string]any
}

// NewGame builds a fresh in-memory candidate from the permitted input
// fields; anything outside the whitelist is dropped, so a client can never
// seed uuid, secret or subscription state. The secret is generated here and
// the legacy category fallback applied; the original attribute snapshot is
// taken once construction is complete.
func NewGame(attrs map[string]any) *Game {
	g := &Game{newGame: true}
	permitted := make(map[string]any, len(attrs))
	for key, value := range attrs {
		if massAssignable[key] {
			permitted[key] = value
		}
	}
	g.applyRaw(permitted)
	g.finish()
	return g
}

// GameFromRecord rebuilds a persisted game from its datastore record.
func GameFromRecord(uuid string, record map[string]any) *Game {
	g := &Game{}
	g.applyRaw(record)
	g.UUID = uuid
	g.finish()
	return g
}

func (g *Game) finish() {
	// Rolling migration: games persisted before categories existed.
	if strings.TrimSpace(g.Category) == "" {
		g.Category = "None"
	}
	if g.Secret == "" {
		g.Secret = generateSecret()
	}
	g.original = g.ToRecord()
}

// IsNew reports whether the game has not yet completed its creation workflow.
func (g *Game) IsNew() bool { return g.newGame }

// MarkSaved transitions the game out of its creation lifecycle.
func (g *Game) MarkSaved() { g.newGame = false }

// OriginalConfigurationType returns the configuration type tag captured when
// the aggregate was constructed. The initial game type consults it to forbid
// regressing a published game back to a placeholder.
func (g *Game) OriginalConfigurationType() string {
	cfg, ok := g.original["configuration"].(map[string]any)
	if !ok {
		return ""
	}
	tag, _ := cfg["type"].(string)
	return tag
}

// Update applies a partial attribute mapping restricted to the whitelist.
// The whole update is rejected if any key outside the whitelist is present.
func (g *Game) Update(attrs map[string]any) error {
	var forbidden []string
	for key := range attrs {
		if !massAssignable[key] {
			forbidden = append(forbidden, key)
		}
	}
	if len(forbidden) > 0 {
		sort.Strings(forbidden)
		return apperrors.ErrMassAssignmentf(strings.Join(forbidden, ","))
	}
	g.applyRaw(attrs)
	return nil
}

// applyRaw assigns attributes without whitelist checks. Construction and
// datastore loads come through here; mass updates only after Update vetted
// the keys.
func (g *Game) applyRaw(attrs map[string]any) {
	for key, value := range attrs {
		switch key {
		case "uuid":
			g.UUID = toString(value)
		case "name":
			g.Name = toString(value)
		case "description":
			g.Description = toString(value)
		case "category":
			g.Category = toString(value)
		case "credits":
			g.Credits = toString(value)
		case "credits_url":
			g.setCreditsURL(toString(value))
		case "screenshots":
			g.Screenshots = toStringSlice(value)
		case "configuration":
			if cfg, ok := value.(map[string]any); ok {
				g.Configuration = SanitizeConfiguration(cfg)
			}
		case "developer_configuration":
			if cfg, ok := value.(map[string]any); ok {
				g.DeveloperConfiguration = cfg
			}
		case "venues":
			g.mergeVenues(value)
		case "secret":
			g.Secret = toString(value)
		case "subscription_type":
			g.SubscriptionType = toString(value)
		case "subscription_customer_id":
			g.SubscriptionCustomerID = toString(value)
		case "end_of_subscription":
			g.EndOfSubscription = toUnix(value)
		}
	}
}

// mergeVenues merges new venue entries into the existing map; entries for
// venues not named in the update are kept as they are.
func (g *Game) mergeVenues(value any) {
	venues, ok := value.(map[string]any)
	if !ok {
		return
	}
	if g.Venues == nil {
		g.Venues = make(map[string]any, len(venues))
	}
	for name, cfg := range venues {
		g.Venues[name] = cfg
	}
}

// setCreditsURL normalizes a blank URL to absence.
func (g *Game) setCreditsURL(url string) {
	if strings.TrimSpace(url) == "" {
		g.CreditsURL = ""
		return
	}
	g.CreditsURL = url
}

// Validate runs the ordered invariant checks and returns the first failure.
// The ordering determines which message is surfaced, so keep it stable.
func (g *Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return apperrors.Validation("games must have a name")
	}
	if strings.TrimSpace(g.Description) == "" {
		return apperrors.Validation("games must have a description")
	}
	if strings.TrimSpace(g.Category) == "" {
		return apperrors.Validation("games must have a category")
	}
	if err := ValidateConfiguration(g); err != nil {
		return err
	}
	if g.CreditsURL != "" && !strings.HasPrefix(g.CreditsURL, "http://") && !strings.HasPrefix(g.CreditsURL, "https://") {
		return apperrors.Validation("games credits URL must be a http or https URL")
	}
	return ValidateVenues(g)
}

// ToRecord returns the canonical persisted representation, nested under the
// "game" wrapper key by the datastore layer. Graph-derived data never
// appears here.
func (g *Game) ToRecord() map[string]any {
	record := map[string]any{
		"uuid":                    g.UUID,
		"name":                    g.Name,
		"description":             g.Description,
		"secret":                  g.Secret,
		"configuration":           g.configuration(),
		"screenshots":             g.screenshots(),
		"developer_configuration": g.developerConfiguration(),
		"venues":                  g.venues(),
		"category":                g.Category,
		"credits":                 g.Credits,
		"credits_url":             g.CreditsURL,
	}
	if g.SubscriptionType != "" {
		record["subscription_type"] = g.SubscriptionType
	}
	if g.SubscriptionCustomerID != "" {
		record["subscription_customer_id"] = g.SubscriptionCustomerID
	}
	if g.EndOfSubscription != 0 {
		record["end_of_subscription"] = g.EndOfSubscription
	}
	return record
}

func (g *Game) configuration() map[string]any {
	if g.Configuration == nil {
		return map[string]any{}
	}
	return g.Configuration
}

func (g *Game) screenshots() []string {
	if g.Screenshots == nil {
		return []string{}
	}
	return g.Screenshots
}

func (g *Game) developerConfiguration() map[string]any {
	if g.DeveloperConfiguration == nil {
		return map[string]any{}
	}
	return g.DeveloperConfiguration
}

func (g *Game) venues() map[string]any {
	if g.Venues == nil {
		return map[string]any{}
	}
	return g.Venues
}

// generateSecret produces the per-game opaque token: 32 random bytes folded
// into a 64-character alphabet of printable ASCII.
func generateSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process environment is broken.
		panic("secret generation: " + err.Error())
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b%64 + 63
	}
	return string(out)
}

func toString(value any) string {
	s, _ := value.(string)
	return s
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toUnix(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
