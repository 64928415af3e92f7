package service

import (
	"context"

	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

// RoleDeveloper marks accounts that may own games in the graph.
const RoleDeveloper = "developer"

// DeveloperService manages the developer role of accounts and their game
// listings.
type DeveloperService struct {
	graph provider.Graph
}

// NewDeveloperService creates a developer service.
func NewDeveloperService(graph provider.Graph) *DeveloperService {
	return &DeveloperService{graph: graph}
}

// Promote grants the developer role to the account.
func (s *DeveloperService) Promote(ctx context.Context, accountUUID string) error {
	return s.graph.AddRole(ctx, accountUUID, RoleDeveloper)
}

// Demote revokes the developer role from the account.
func (s *DeveloperService) Demote(ctx context.Context, accountUUID string) error {
	return s.graph.RemoveRole(ctx, accountUUID, RoleDeveloper)
}

// GameUUIDs returns the games the account develops.
func (s *DeveloperService) GameUUIDs(ctx context.Context, accountUUID string) ([]string, error) {
	return s.graph.ListRelated(ctx, accountUUID, RelationDevelops, "outgoing")
}
