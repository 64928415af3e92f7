package domain

import "time"

// SubscriptionState is a projection of the game's three subscription fields;
// there is no separately stored subscription entity.
type SubscriptionState int

const (
	// SubscriptionNone means no subscription was ever started.
	SubscriptionNone SubscriptionState = iota
	// SubscriptionActive means the game is subscribed with no scheduled end.
	SubscriptionActive
	// SubscriptionPhasingOut means the subscription was cancelled but stays
	// active until the agreed period end.
	SubscriptionPhasingOut
	// SubscriptionExpired means the scheduled end has passed; for access
	// purposes this behaves exactly like SubscriptionNone.
	SubscriptionExpired
)

func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionActive:
		return "active"
	case SubscriptionPhasingOut:
		return "phasing_out"
	case SubscriptionExpired:
		return "expired"
	default:
		return "none"
	}
}

// SubscriptionState derives the projection at the given instant.
func (g *Game) SubscriptionState(now time.Time) SubscriptionState {
	if g.SubscriptionType == "" {
		return SubscriptionNone
	}
	if g.EndOfSubscription == 0 {
		return SubscriptionActive
	}
	if now.Unix() < g.EndOfSubscription {
		return SubscriptionPhasingOut
	}
	return SubscriptionExpired
}

// HasActiveSubscription reports whether the game is subscribed at the given
// instant. In production, subscriptions created against the gateway's test
// mode are treated as absent.
func (g *Game) HasActiveSubscription(now time.Time, production bool) bool {
	if production && g.SubscriptionType == "test" {
		return false
	}
	state := g.SubscriptionState(now)
	return state == SubscriptionActive || state == SubscriptionPhasingOut
}
