package schema

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

// EnsureIndexes creates the missing resolved indexes for every registered
// document type that owns a collection. Indexes already on the server are
// left alone and nothing is dropped. timeoutMS bounds each index build in
// milliseconds; values of zero or less leave the server default in place.
func (m *Manager) EnsureIndexes(ctx context.Context, timeoutMS int64) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.ensureDocumentIndexes(ctx, class, timeoutMS)
	})
}

// EnsureDocumentIndexes creates the missing resolved indexes for a single
// document type. The type must own a collection.
func (m *Manager) EnsureDocumentIndexes(ctx context.Context, name string, timeoutMS int64) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.ensureDocumentIndexes(ctx, class, timeoutMS)
}

// UpdateIndexes reconciles every owning document type's collection with its
// resolved indexes, dropping what no longer matches and creating what is
// missing.
func (m *Manager) UpdateIndexes(ctx context.Context, timeoutMS int64) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.updateDocumentIndexes(ctx, class, timeoutMS)
	})
}

// UpdateDocumentIndexes reconciles a single document type's collection with
// its resolved indexes.
func (m *Manager) UpdateDocumentIndexes(ctx context.Context, name string, timeoutMS int64) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.updateDocumentIndexes(ctx, class, timeoutMS)
}

// DeleteIndexes drops all indexes from every owning document type's
// collection.
func (m *Manager) DeleteIndexes(ctx context.Context) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.deleteDocumentIndexes(ctx, class)
	})
}

// DeleteDocumentIndexes drops all indexes from a single document type's
// collection.
func (m *Manager) DeleteDocumentIndexes(ctx context.Context, name string) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.deleteDocumentIndexes(ctx, class)
}

func (m *Manager) ensureDocumentIndexes(ctx context.Context, class *metadata.ClassMetadata, timeoutMS int64) error {
	indexes, err := m.DocumentIndexes(class.Name)
	if err != nil {
		return err
	}
	if len(indexes) == 0 {
		return nil
	}

	coll := m.collectionFor(class)
	observed, err := coll.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes for %s: %w", coll.Name(), err)
	}

	for _, idx := range indexes {
		if observedSatisfies(observed, idx) {
			continue
		}

		opts := idx.Options
		if opts == nil {
			opts = bson.M{}
		}
		if _, set := opts["timeout"]; !set && timeoutMS > 0 {
			opts["timeout"] = timeoutMS
		}

		name, err := coll.CreateIndex(ctx, idx.Keys, opts)
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll.Name(), err)
		}

		IndexesCreated.WithLabelValues(coll.Name()).Inc()
		m.log.Debug("created index",
			zap.String("document", class.Name),
			zap.String("collection", coll.Name()),
			zap.String("index", name))
	}
	return nil
}

func (m *Manager) updateDocumentIndexes(ctx context.Context, class *metadata.ClassMetadata, timeoutMS int64) error {
	declared, err := m.DocumentIndexes(class.Name)
	if err != nil {
		return err
	}

	coll := m.collectionFor(class)
	observed, err := coll.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes for %s: %w", coll.Name(), err)
	}

	for _, idx := range observed {
		name := idx.Name()
		if name == "" || name == "_id_" {
			continue
		}
		if hasEquivalent(declared, idx) {
			continue
		}

		if err := coll.DropIndex(ctx, name); err != nil {
			return fmt.Errorf("failed to drop index %s on %s: %w", name, coll.Name(), err)
		}

		IndexesDropped.WithLabelValues(coll.Name()).Inc()
		m.log.Info("dropped stale index",
			zap.String("document", class.Name),
			zap.String("collection", coll.Name()),
			zap.String("index", name))
	}

	return m.ensureDocumentIndexes(ctx, class, timeoutMS)
}

func (m *Manager) deleteDocumentIndexes(ctx context.Context, class *metadata.ClassMetadata) error {
	coll := m.collectionFor(class)
	if err := coll.DropIndexes(ctx); err != nil {
		return fmt.Errorf("failed to drop indexes for %s: %w", coll.Name(), err)
	}
	return nil
}

// hasEquivalent reports whether any declared index satisfies the observed
// one.
func hasEquivalent(declared []metadata.Index, observed database.IndexDescription) bool {
	for _, idx := range declared {
		if Equivalent(observed, idx) {
			return true
		}
	}
	return false
}
