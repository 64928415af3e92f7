package domain

import "time"

// PrivateDocument is the representation returned to a game's developers:
// the canonical record plus the live developer set, computed venue data and
// the subscription projection. Payment-processor references stay internal.
func (g *Game) PrivateDocument(developers []string, canvasURL string, now time.Time, production bool) map[string]any {
	doc := g.ToRecord()
	delete(doc, "subscription_type")
	delete(doc, "subscription_customer_id")
	delete(doc, "end_of_subscription")

	if developers == nil {
		developers = []string{}
	}
	doc["developers"] = developers
	doc["venues"] = ComputeVenues(g, canvasURL)
	doc["subscription"] = g.HasActiveSubscription(now, production)
	if g.SubscriptionState(now) == SubscriptionPhasingOut {
		doc["subscription_phasing_out"] = g.EndOfSubscription
	}
	return doc
}

// PublicDocument is the filtered projection for anonymous listings: only
// venues that are both enabled and ready appear, and the embedded venue's
// iframe code, when present, is surfaced top-level as embed.
func (g *Game) PublicDocument(canvasURL string) map[string]any {
	computed := ComputeVenues(g, canvasURL)

	doc := map[string]any{
		"uuid":        g.UUID,
		"name":        g.Name,
		"description": g.Description,
		"screenshots": g.screenshots(),
		"venues":      PublicVenues(computed),
		"category":    g.Category,
		"credits":     g.Credits,
		"credits_url": g.CreditsURL,
	}
	if code := EmbedCode(computed); code != "" {
		doc["embed"] = code
	}
	return doc
}
