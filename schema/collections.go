package schema

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

// CreateCollections creates the collection for every registered document
// type that owns one, carrying over capped settings and validators.
func (m *Manager) CreateCollections(ctx context.Context) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.createDocumentCollection(ctx, class)
	})
}

// CreateDocumentCollection creates the collection for a single document
// type. The type must own a collection.
func (m *Manager) CreateDocumentCollection(ctx context.Context, name string) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.createDocumentCollection(ctx, class)
}

// DropCollections drops the collection of every owning document type.
func (m *Manager) DropCollections(ctx context.Context) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.dropDocumentCollection(ctx, class)
	})
}

// DropDocumentCollection drops the collection of a single document type.
func (m *Manager) DropDocumentCollection(ctx context.Context, name string) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.dropDocumentCollection(ctx, class)
}

// DropDatabases drops the database of every owning document type. Types
// sharing a database each issue their own drop; repeating the command is
// harmless.
func (m *Manager) DropDatabases(ctx context.Context) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.dropDocumentDatabase(ctx, class)
	})
}

// DropDocumentDatabase drops the database holding a single document type's
// collection.
func (m *Manager) DropDocumentDatabase(ctx context.Context, name string) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.dropDocumentDatabase(ctx, class)
}

// UpdateValidators applies each owning document type's validator settings
// to its existing collection.
func (m *Manager) UpdateValidators(ctx context.Context) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		return m.updateDocumentValidator(ctx, class)
	})
}

// UpdateDocumentValidator applies a single document type's validator
// settings to its existing collection via collMod.
func (m *Manager) UpdateDocumentValidator(ctx context.Context, name string) error {
	class, err := m.collectionOwner(name)
	if err != nil {
		return err
	}
	return m.updateDocumentValidator(ctx, class)
}

func (m *Manager) createDocumentCollection(ctx context.Context, class *metadata.ClassMetadata) error {
	db := m.databaseFor(class)

	// Capped settings are forwarded even when zero so the server sees
	// exactly what the mapping declares.
	opts := database.CreateCollectionOptions{
		Capped:       class.CollectionCapped,
		SizeInBytes:  class.CollectionSize,
		MaxDocuments: class.CollectionMax,
	}
	if len(class.Validator) > 0 {
		opts.Validator = class.Validator
		opts.ValidationLevel = class.ValidationLevel
		opts.ValidationAction = class.ValidationAction
	}

	if err := db.CreateCollection(ctx, class.Collection, opts); err != nil {
		return fmt.Errorf("failed to create collection for %s: %w", class.Name, err)
	}

	CollectionsCreated.WithLabelValues(db.Name()).Inc()
	m.log.Info("created collection",
		zap.String("document", class.Name),
		zap.String("database", db.Name()),
		zap.String("collection", class.Collection),
		zap.Bool("capped", class.CollectionCapped))
	return nil
}

func (m *Manager) dropDocumentCollection(ctx context.Context, class *metadata.ClassMetadata) error {
	db := m.databaseFor(class)
	coll := db.Collection(class.Collection)
	if err := coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop collection for %s: %w", class.Name, err)
	}

	CollectionsDropped.WithLabelValues(db.Name()).Inc()
	m.log.Info("dropped collection",
		zap.String("document", class.Name),
		zap.String("database", db.Name()),
		zap.String("collection", class.Collection))
	return nil
}

func (m *Manager) dropDocumentDatabase(ctx context.Context, class *metadata.ClassMetadata) error {
	db := m.databaseFor(class)
	if err := db.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop database for %s: %w", class.Name, err)
	}

	m.log.Info("dropped database",
		zap.String("document", class.Name),
		zap.String("database", db.Name()))
	return nil
}

func (m *Manager) updateDocumentValidator(ctx context.Context, class *metadata.ClassMetadata) error {
	if len(class.Validator) == 0 && class.ValidationLevel == "" && class.ValidationAction == "" {
		return nil
	}

	cmd := bson.D{{Key: "collMod", Value: class.Collection}}
	if len(class.Validator) > 0 {
		cmd = append(cmd, bson.E{Key: "validator", Value: class.Validator})
	}
	if class.ValidationLevel != "" {
		cmd = append(cmd, bson.E{Key: "validationLevel", Value: class.ValidationLevel})
	}
	if class.ValidationAction != "" {
		cmd = append(cmd, bson.E{Key: "validationAction", Value: class.ValidationAction})
	}

	db := m.databaseFor(class)
	if _, err := db.RunCommand(ctx, cmd); err != nil {
		return fmt.Errorf("failed to update validator for %s: %w", class.Name, err)
	}

	m.log.Info("updated collection validator",
		zap.String("document", class.Name),
		zap.String("collection", class.Collection))
	return nil
}
