// Package database is the boundary between schema management and the
// MongoDB driver. It exposes narrow client, database and collection
// interfaces plus plain data types for index descriptions and command
// results, so the schema package never touches driver types directly.
// The mongo adapter in this package is the only production implementation.
package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Client is a connected MongoDB deployment.
type Client interface {
	// Database returns a handle for the named database.
	Database(name string) Database

	// Disconnect closes the underlying connections.
	Disconnect(ctx context.Context) error
}

// Database is a handle for a single database.
type Database interface {
	// Name returns the database name.
	Name() string

	// Collection returns a handle for the named collection.
	Collection(name string) Collection

	// RunCommand executes a database command and decodes the response.
	// When the server reports command failure, the decoded response is
	// returned alongside a CommandError describing it; the error is nil
	// only for acknowledged commands.
	RunCommand(ctx context.Context, cmd bson.D) (CommandResult, error)

	// CreateCollection creates a collection with the given options. All
	// options are forwarded verbatim, including zero values.
	CreateCollection(ctx context.Context, name string, opts CreateCollectionOptions) error

	// Drop removes the database.
	Drop(ctx context.Context) error
}

// Collection is a handle for a single collection.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// ListIndexes returns the collection's index descriptions.
	ListIndexes(ctx context.Context) ([]IndexDescription, error)

	// CreateIndex creates an index from an ordered key pattern and loose
	// creation options, returning the index name. The "timeout" option
	// (milliseconds) bounds the command's execution time on the server.
	CreateIndex(ctx context.Context, keys bson.D, opts bson.M) (string, error)

	// DropIndex removes a single index by its server-reported name.
	DropIndex(ctx context.Context, name string) error

	// DropIndexes removes all indexes except the one on _id.
	DropIndexes(ctx context.Context) error

	// Drop removes the collection.
	Drop(ctx context.Context) error
}

// CreateCollectionOptions carries the collection creation options taken
// from document metadata.
type CreateCollectionOptions struct {
	Capped       bool
	SizeInBytes  int64
	MaxDocuments int64

	// Optional document validator.
	Validator        bson.D
	ValidationLevel  string
	ValidationAction string
}
