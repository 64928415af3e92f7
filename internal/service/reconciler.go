// Package service provides the business logic of the devcenter backend:
// game lookup and persistence, developer-list reconciliation against the
// relationship graph, subscriptions, and insights.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

// RelationDevelops is the graph relation between a developer and a game.
const RelationDevelops = "develops"

// Reconciler drives a game's developer list in the graph from one state to
// another. The graph offers no transactions, so a rejected edge is
// compensated by steering the live state back to the old list.
type Reconciler struct {
	graph provider.Graph
}

// NewReconciler creates a reconciler on top of the graph collaborator.
func NewReconciler(graph provider.Graph) *Reconciler {
	return &Reconciler{graph: graph}
}

// Reconcile applies the developer-list change from old to desired. It
// returns true when the change was applied, and false when the graph
// rejected one of the edges and the old list was restored. Infrastructure
// failures propagate as errors; the graph state is then undefined.
func (r *Reconciler) Reconcile(ctx context.Context, gameUUID string, old, desired []string) (bool, error) {
	return r.reconcile(ctx, gameUUID, old, desired, true)
}

func (r *Reconciler) reconcile(ctx context.Context, gameUUID string, current, desired []string, allowRollback bool) (bool, error) {
	toAdd, toRemove := diffDevelopers(current, desired)

	for _, dev := range toAdd {
		err := r.graph.AddRelationship(ctx, dev, gameUUID, RelationDevelops)
		if errors.Is(err, apperrors.ErrInvalidRelation) && allowRollback {
			return r.rollback(ctx, gameUUID, dev, current)
		}
		if err != nil {
			return false, err
		}
	}

	for _, dev := range toRemove {
		err := r.graph.RemoveRelationship(ctx, dev, gameUUID, RelationDevelops)
		if errors.Is(err, apperrors.ErrInvalidRelation) && allowRollback {
			return r.rollback(ctx, gameUUID, dev, current)
		}
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

// rollback steers the live developer list back to old after the graph
// rejected an edge. It runs without a second rollback level: a failure here
// is an infrastructure error, not another rejection to compensate.
func (r *Reconciler) rollback(ctx context.Context, gameUUID, rejected string, old []string) (bool, error) {
	logger.Info("developer list rejected, rolling back",
		zap.String("game", gameUUID),
		zap.String("developer", rejected),
	)

	live, err := r.graph.ListRelated(ctx, gameUUID, RelationDevelops, "incoming")
	if err != nil {
		return false, err
	}
	if _, err := r.reconcile(ctx, gameUUID, live, old, false); err != nil {
		return false, err
	}
	return false, nil
}

// diffDevelopers computes which developers to connect and which to
// disconnect, preserving the input order and ignoring duplicates.
func diffDevelopers(current, desired []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]bool, len(current))
	for _, dev := range current {
		currentSet[dev] = true
	}
	desiredSet := make(map[string]bool, len(desired))
	for _, dev := range desired {
		desiredSet[dev] = true
	}

	seen := map[string]bool{}
	for _, dev := range desired {
		if !currentSet[dev] && !seen[dev] {
			toAdd = append(toAdd, dev)
			seen[dev] = true
		}
	}
	for _, dev := range current {
		if !desiredSet[dev] && !seen[dev] {
			toRemove = append(toRemove, dev)
			seen[dev] = true
		}
	}
	return toAdd, toRemove
}
