package schema

import (
	"context"
	"fmt"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

// IndexPlan is the effective change set UpdateDocumentIndexes would apply
// to one document type's collection: observed indexes with no equivalent
// declaration are dropped, declared indexes with no equivalent on the
// server are created.
type IndexPlan struct {
	Document   string
	Collection string
	Create     []metadata.Index
	Drop       []database.IndexDescription
}

// InSync reports whether the collection already matches its declarations.
func (p IndexPlan) InSync() bool {
	return len(p.Create) == 0 && len(p.Drop) == 0
}

// PlanIndexes computes the index change set for every registered document
// type that owns a collection, without touching anything.
func (m *Manager) PlanIndexes(ctx context.Context) ([]IndexPlan, error) {
	var plans []IndexPlan
	err := m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		plan, err := m.planDocumentIndexes(ctx, class)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// PlanDocumentIndexes computes the index change set for a single document
// type. The type must own a collection.
func (m *Manager) PlanDocumentIndexes(ctx context.Context, name string) (IndexPlan, error) {
	class, err := m.collectionOwner(name)
	if err != nil {
		return IndexPlan{}, err
	}
	return m.planDocumentIndexes(ctx, class)
}

func (m *Manager) planDocumentIndexes(ctx context.Context, class *metadata.ClassMetadata) (IndexPlan, error) {
	declared, err := m.DocumentIndexes(class.Name)
	if err != nil {
		return IndexPlan{}, err
	}

	coll := m.collectionFor(class)
	observed, err := coll.ListIndexes(ctx)
	if err != nil {
		return IndexPlan{}, fmt.Errorf("failed to list indexes for %s: %w", coll.Name(), err)
	}

	plan := IndexPlan{Document: class.Name, Collection: coll.Name()}

	for _, idx := range observed {
		name := idx.Name()
		if name == "" || name == "_id_" {
			continue
		}
		if !hasEquivalent(declared, idx) {
			plan.Drop = append(plan.Drop, idx)
		}
	}

	for _, idx := range declared {
		if !observedSatisfies(observed, idx) {
			plan.Create = append(plan.Create, idx)
		}
	}

	return plan, nil
}

// observedSatisfies reports whether any index on the server is equivalent
// to the declared one.
func observedSatisfies(observed []database.IndexDescription, declared metadata.Index) bool {
	for _, idx := range observed {
		if Equivalent(idx, declared) {
			return true
		}
	}
	return false
}
