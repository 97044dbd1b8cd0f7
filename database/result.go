package database

import "go.mongodb.org/mongo-driver/bson"

// CommandResult is the decoded response document of a database command.
// Only the fields schema management inspects are modeled.
type CommandResult struct {
	Ok     float64
	Code   int32
	ErrMsg string

	// ProposedKey is returned by shardCollection when it refuses to shard
	// until a supporting index exists.
	ProposedKey bson.D
}

// Succeeded reports whether the server acknowledged the command.
func (r CommandResult) Succeeded() bool {
	return r.Ok != 0
}
