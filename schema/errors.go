package schema

import (
	"errors"
	"fmt"
)

// Common schema management error types
var (
	// ErrNotCollectionOwner is returned when an operation requires a document
	// type with a collection of its own; mapped superclasses, embedded
	// documents and query result documents do not qualify
	ErrNotCollectionOwner = errors.New("document type does not own a collection")
)

// ShardingError reports a failed enableSharding or shardCollection command
type ShardingError struct {
	Database string
	Document string // empty for database-level failures
	Message  string
}

// Error implements the error interface
func (e *ShardingError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("failed to ensure sharding for document %s: %s", e.Document, e.Message)
	}
	return fmt.Sprintf("failed to enable sharding for database %s: %s", e.Database, e.Message)
}

// IsNotCollectionOwner returns true if the error is ErrNotCollectionOwner
func IsNotCollectionOwner(err error) bool {
	return errors.Is(err, ErrNotCollectionOwner)
}

// IsShardingError returns true if the error is a ShardingError
func IsShardingError(err error) bool {
	var se *ShardingError
	return errors.As(err, &se)
}
