package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
)

// MockDatastore is an in-memory Datastore for tests.
type MockDatastore struct {
	mu   sync.Mutex
	docs map[string]map[string]any

	// FailNext makes the next call return the given error.
	FailNext error
}

func NewMockDatastore() *MockDatastore {
	return &MockDatastore{docs: map[string]map[string]any{}}
}

var _ Datastore = (*MockDatastore)(nil)

func (m *MockDatastore) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MockDatastore) Get(_ context.Context, key string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	doc, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	return cloneDoc(doc), nil
}

func (m *MockDatastore) GetBatch(_ context.Context, keys []string) (map[string]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	out := map[string]map[string]any{}
	for _, key := range keys {
		if doc, ok := m.docs[key]; ok {
			out[key] = cloneDoc(doc)
		}
	}
	return out, nil
}

func (m *MockDatastore) Set(_ context.Context, key string, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.docs[key] = cloneDoc(doc)
	return nil
}

func (m *MockDatastore) Create(_ context.Context, doc map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	key := uuid.NewString()
	m.docs[key] = cloneDoc(doc)
	return key, nil
}

// Stored returns the raw document under key, or nil.
func (m *MockDatastore) Stored(key string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil
	}
	return cloneDoc(doc)
}

func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

type edge struct {
	from, to, relation string
}

// MockGraph is an in-memory Graph for tests. Adding a "develops"
// relationship from an entity without the "developer" role is rejected as an
// invalid relation, mirroring the real graph's structural checks.
type MockGraph struct {
	mu    sync.Mutex
	roles map[string]map[string]bool
	edges map[edge]bool

	// FailNext makes the next relationship call return the given error.
	FailNext error
}

func NewMockGraph() *MockGraph {
	return &MockGraph{
		roles: map[string]map[string]bool{},
		edges: map[edge]bool{},
	}
}

var _ Graph = (*MockGraph)(nil)

func (m *MockGraph) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MockGraph) AddRole(_ context.Context, entityID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[entityID] == nil {
		m.roles[entityID] = map[string]bool{}
	}
	m.roles[entityID][role] = true
	return nil
}

func (m *MockGraph) RemoveRole(_ context.Context, entityID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles[entityID], role)
	return nil
}

func (m *MockGraph) HasRole(entityID, role string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[entityID][role]
}

func (m *MockGraph) ListRelated(_ context.Context, entityID, relation, direction string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var related []string
	for e := range m.edges {
		if e.relation != relation {
			continue
		}
		switch direction {
		case "incoming":
			if e.to == entityID {
				related = append(related, e.from)
			}
		default:
			if e.from == entityID {
				related = append(related, e.to)
			}
		}
	}
	return related, nil
}

func (m *MockGraph) AddRelationship(_ context.Context, fromID, toID, relation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if relation == "develops" && !m.roles[fromID]["developer"] {
		return fmt.Errorf("relation from %s is invalid: %w", fromID, apperrors.ErrInvalidRelation)
	}
	m.edges[edge{from: fromID, to: toID, relation: relation}] = true
	return nil
}

func (m *MockGraph) RemoveRelationship(_ context.Context, fromID, toID, relation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	delete(m.edges, edge{from: fromID, to: toID, relation: relation})
	return nil
}

func (m *MockGraph) UUIDsByRole(_ context.Context, role string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var uuids []string
	for entityID, roles := range m.roles {
		if roles[role] {
			uuids = append(uuids, entityID)
		}
	}
	return uuids, nil
}

func (m *MockGraph) DeleteEntity(_ context.Context, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles, entityID)
	for e := range m.edges {
		if e.from == entityID || e.to == entityID {
			delete(m.edges, e)
		}
	}
	return nil
}

// MockAuth is an in-memory Auth for tests. Register principals per token
// with AddToken.
type MockAuth struct {
	mu        sync.Mutex
	owners    map[string]*domain.Principal
	appTokens int
}

func NewMockAuth() *MockAuth {
	return &MockAuth{owners: map[string]*domain.Principal{}}
}

var _ Auth = (*MockAuth)(nil)

func (m *MockAuth) AddToken(token string, principal *domain.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[token] = principal
}

func (m *MockAuth) TokenOwner(_ context.Context, token string) (*domain.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[token], nil
}

func (m *MockAuth) CreateAppToken(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appTokens++
	token := fmt.Sprintf("app-token-%d", m.appTokens)
	m.owners[token] = &domain.Principal{UUID: "app", System: true}
	return token, nil
}

// MockPayment is an in-memory PaymentGateway for tests.
type MockPayment struct {
	mu            sync.Mutex
	customers     map[string]*Customer
	subscriptions map[string]*Subscription

	// DeclinedTokens lists card tokens whose charge attempts fail.
	DeclinedTokens map[string]bool
	// RefuseCancel makes cancellations come back without the period-end
	// flag set.
	RefuseCancel bool
	// Live marks created subscriptions as live-mode.
	Live bool
	// PeriodEnd is the period end stamped on cancelled subscriptions.
	PeriodEnd int64
}

func NewMockPayment() *MockPayment {
	return &MockPayment{
		customers:      map[string]*Customer{},
		subscriptions:  map[string]*Subscription{},
		DeclinedTokens: map[string]bool{},
	}
}

var _ PaymentGateway = (*MockPayment)(nil)

func (m *MockPayment) CreateCustomer(_ context.Context, _, email, cardToken string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeclinedTokens[cardToken] {
		return nil, &gatewayError{status: 402, message: "Your card was declined"}
	}
	customer := &Customer{ID: "cus_" + uuid.NewString()[:8], Email: email}
	m.customers[customer.ID] = customer
	return customer, nil
}

func (m *MockPayment) RetrieveCustomer(_ context.Context, customerID string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[customerID], nil
}

func (m *MockPayment) UpdateSubscription(_ context.Context, customerID, plan string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.customers[customerID] == nil {
		return nil, &gatewayError{status: 404, message: "No such customer"}
	}
	sub := &Subscription{ID: "sub_" + plan, Live: m.Live}
	m.subscriptions[customerID] = sub
	return sub, nil
}

func (m *MockPayment) CancelAtPeriodEnd(_ context.Context, customerID string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := m.subscriptions[customerID]
	if sub == nil {
		return nil, &gatewayError{status: 404, message: "No active subscription"}
	}
	if m.RefuseCancel {
		return &Subscription{ID: sub.ID, Live: sub.Live}, nil
	}
	sub.CancelAtPeriodEnd = true
	sub.CurrentPeriodEnd = m.PeriodEnd
	return sub, nil
}

// MockTracking is an in-memory Tracking for tests.
type MockTracking struct {
	Players map[string]map[string]any
	Views   map[string]map[string]any
}

func NewMockTracking() *MockTracking {
	return &MockTracking{
		Players: map[string]map[string]any{},
		Views:   map[string]map[string]any{},
	}
}

var _ Tracking = (*MockTracking)(nil)

func (m *MockTracking) PlayerCounts(_ context.Context, gameUUID string) (map[string]any, error) {
	if counts, ok := m.Players[gameUUID]; ok {
		return counts, nil
	}
	return map[string]any{"daily": 0, "monthly": 0}, nil
}

func (m *MockTracking) Impressions(_ context.Context, gameUUID string) (map[string]any, error) {
	if views, ok := m.Views[gameUUID]; ok {
		return views, nil
	}
	return map[string]any{"total": 0}, nil
}

// MockCache is an in-memory Cache for tests.
type MockCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	// Computes counts how often the compute callback actually ran.
	Computes int
}

func NewMockCache() *MockCache {
	return &MockCache{entries: map[string][]byte{}}
}

var _ Cache = (*MockCache)(nil)

func (m *MockCache) Fetch(ctx context.Context, key string, _ time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	m.mu.Lock()
	if cached, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	payload, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = payload
	m.Computes++
	m.mu.Unlock()
	return payload, nil
}
