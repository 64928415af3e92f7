// Package provider holds the abstract contracts of the external
// collaborators (datastore, graph, auth, tracking, payment gateway and
// cache) together with their HTTP implementations and in-memory mocks.
// Domain and service code depends on the interfaces only; the composition
// root binds the real clients.
package provider

import (
	"context"
	"time"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
)

// Datastore is the persistent key-value document store. Game records are
// nested under the wrapper key "game" inside each document.
type Datastore interface {
	// Get returns the document stored under key, or nil when absent.
	Get(ctx context.Context, key string) (map[string]any, error)
	// GetBatch returns the documents for the given keys; absent keys are
	// simply missing from the result.
	GetBatch(ctx context.Context, keys []string) (map[string]map[string]any, error)
	// Set replaces the document stored under key.
	Set(ctx context.Context, key string, doc map[string]any) error
	// Create stores a new document and returns its assigned key.
	Create(ctx context.Context, doc map[string]any) (string, error)
}

// Graph is the relationship store. Structurally rejected relationship calls
// surface wrapped in errors.ErrInvalidRelation; everything else is fatal.
type Graph interface {
	AddRole(ctx context.Context, entityID, role string) error
	RemoveRole(ctx context.Context, entityID, role string) error
	ListRelated(ctx context.Context, entityID, relation, direction string) ([]string, error)
	AddRelationship(ctx context.Context, fromID, toID, relation string) error
	RemoveRelationship(ctx context.Context, fromID, toID, relation string) error
	UUIDsByRole(ctx context.Context, role string) ([]string, error)
	DeleteEntity(ctx context.Context, entityID string) error
}

// Auth is the identity backend.
type Auth interface {
	// TokenOwner resolves a bearer token to its principal, or nil when the
	// token is unknown or expired.
	TokenOwner(ctx context.Context, token string) (*domain.Principal, error)
	// CreateAppToken issues a service-level token from OAuth app credentials.
	CreateAppToken(ctx context.Context, clientID, clientSecret string) (string, error)
}

// Tracking is the usage-tracking backend behind game insights.
type Tracking interface {
	PlayerCounts(ctx context.Context, gameUUID string) (map[string]any, error)
	Impressions(ctx context.Context, gameUUID string) (map[string]any, error)
}

// Customer is a payment-gateway customer record.
type Customer struct {
	ID    string
	Email string
}

// Subscription is a payment-gateway subscription.
type Subscription struct {
	ID                string
	Live              bool
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  int64
}

// PaymentGateway is the payment processor. Callers must wrap every error
// from here into the domain payment error; gateway specifics never leak
// further up.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, description, email, cardToken string) (*Customer, error)
	// RetrieveCustomer returns nil, nil when the customer does not exist.
	RetrieveCustomer(ctx context.Context, customerID string) (*Customer, error)
	UpdateSubscription(ctx context.Context, customerID, plan string) (*Subscription, error)
	CancelAtPeriodEnd(ctx context.Context, customerID string) (*Subscription, error)
}

// Cache memoizes expensive reads. Implementations degrade to computing on
// any cache failure; a broken cache must never fail a request.
type Cache interface {
	Fetch(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error)
}
