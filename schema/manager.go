// Package schema keeps MongoDB collections, indexes and sharding in line
// with declared document metadata. The Manager resolves each document's
// full index set (its own declarations plus those contributed by embedded
// documents), compares it against what live collections report, and
// applies the difference. All operations come in a bulk form covering
// every registered document and a single-document form.
package schema

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

// defaultAdminDatabase is where sharding commands are issued.
const defaultAdminDatabase = "admin"

// ManagerOptions configures optional Manager behavior
type ManagerOptions struct {
	// Logger receives progress reporting. Defaults to a no-op logger.
	Logger *zap.Logger

	// DefaultDatabase is used for documents whose metadata does not name
	// a database.
	DefaultDatabase string

	// AdminDatabase overrides the database sharding commands are issued
	// against. Defaults to "admin".
	AdminDatabase string
}

// Manager applies declared document metadata to a live MongoDB deployment.
// It holds no mutable state of its own; concurrent use is safe as long as
// the provider is.
type Manager struct {
	provider metadata.Provider
	client   database.Client
	log      *zap.Logger

	defaultDatabase string
	adminDatabase   string
}

// NewManager creates a schema manager for the given metadata provider and
// database client. opts may be nil.
func NewManager(provider metadata.Provider, client database.Client, opts *ManagerOptions) *Manager {
	m := &Manager{
		provider:      provider,
		client:        client,
		log:           zap.NewNop(),
		adminDatabase: defaultAdminDatabase,
	}
	if opts != nil {
		if opts.Logger != nil {
			m.log = opts.Logger
		}
		m.defaultDatabase = opts.DefaultDatabase
		if opts.AdminDatabase != "" {
			m.adminDatabase = opts.AdminDatabase
		}
	}
	return m
}

// collectionOwner fetches metadata and verifies the document type owns a
// collection before any database work happens.
func (m *Manager) collectionOwner(name string) (*metadata.ClassMetadata, error) {
	class, err := m.provider.Get(name)
	if err != nil {
		return nil, err
	}
	if !class.OwnsCollection() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotCollectionOwner)
	}
	return class, nil
}

// databaseFor returns the database handle a document's metadata points at.
func (m *Manager) databaseFor(class *metadata.ClassMetadata) database.Database {
	name := class.Database
	if name == "" {
		name = m.defaultDatabase
	}
	return m.client.Database(name)
}

// collectionFor returns the collection handle a document's metadata points at.
func (m *Manager) collectionFor(class *metadata.ClassMetadata) database.Collection {
	return m.databaseFor(class).Collection(class.Collection)
}

// eachCollectionOwner runs fn for every registered document that owns a
// collection, stopping at the first error.
func (m *Manager) eachCollectionOwner(fn func(*metadata.ClassMetadata) error) error {
	for _, class := range m.provider.All() {
		if !class.OwnsCollection() {
			continue
		}
		if err := fn(class); err != nil {
			return err
		}
	}
	return nil
}
