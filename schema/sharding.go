package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

const (
	// Server error codes for shardCollection against a collection that is
	// already sharded. 4.2 reports IllegalOperation, older releases
	// AlreadyInitialized, and 4.0 omits the code entirely and only sets
	// the message.
	codeIllegalOperation   = 20
	codeAlreadyInitialized = 23

	msgAlreadySharded    = "already sharded"
	msgAlreadyEnabled    = "already enabled"
	msgMissingShardIndex = "please create an index that starts"

	// One initial shardCollection command plus two retries after creating
	// the index the server asked for.
	maxShardAttempts = 3
)

// shardOutcome classifies a single shardCollection attempt.
type shardOutcome int

const (
	// shardDone means the collection is sharded, whether by this command
	// or a previous one.
	shardDone shardOutcome = iota
	// shardNeedsIndex means the server wants a prerequisite index on the
	// shard key before it will shard the collection.
	shardNeedsIndex
	// shardFatal means the attempt failed for a reason no retry can fix.
	shardFatal
)

// EnsureSharding shards the collection of every registered document type
// that owns a collection and declares a shard key. indexOptions is applied
// to any prerequisite shard key index this has to create.
func (m *Manager) EnsureSharding(ctx context.Context, indexOptions bson.M) error {
	return m.eachCollectionOwner(func(class *metadata.ClassMetadata) error {
		if !class.IsSharded() {
			return nil
		}
		return m.ensureDocumentSharding(ctx, class, indexOptions)
	})
}

// EnsureDocumentSharding shards a single document type's collection,
// enabling sharding on its database first. Types without a shard key are
// a no-op.
func (m *Manager) EnsureDocumentSharding(ctx context.Context, name string, indexOptions bson.M) error {
	class, err := m.provider.Get(name)
	if err != nil {
		return err
	}
	if !class.IsSharded() {
		return nil
	}
	return m.ensureDocumentSharding(ctx, class, indexOptions)
}

func (m *Manager) ensureDocumentSharding(ctx context.Context, class *metadata.ClassMetadata, indexOptions bson.M) error {
	db := m.databaseFor(class)
	if err := m.enableSharding(ctx, db.Name()); err != nil {
		return err
	}

	var result database.CommandResult
	for attempt := 0; attempt < maxShardAttempts; attempt++ {
		res, err := m.runShardCollection(ctx, db, class)
		ShardAttempts.WithLabelValues(class.Collection).Inc()

		outcome, fatal := classifyShardAttempt(res, err, db.Name(), class)
		switch outcome {
		case shardDone:
			m.log.Info("sharded collection",
				zap.String("document", class.Name),
				zap.String("database", db.Name()),
				zap.String("collection", class.Collection))
			return nil
		case shardFatal:
			return fatal
		}

		result = res
		if attempt == maxShardAttempts-1 {
			break
		}

		// The proposed key is missing when the command went through
		// mongos, so fall back to the declared shard key.
		key := res.ProposedKey
		if len(key) == 0 {
			key = class.ShardKey.Keys
		}

		coll := m.collectionFor(class)
		if _, err := coll.CreateIndex(ctx, key, indexOptions); err != nil {
			return fmt.Errorf("failed to create shard key index for %s: %w", class.Name, err)
		}
		m.log.Debug("created shard key index",
			zap.String("document", class.Name),
			zap.String("collection", class.Collection))
	}

	return &ShardingError{
		Database: db.Name(),
		Document: class.Name,
		Message:  result.ErrMsg,
	}
}

// classifyShardAttempt maps a shardCollection response onto the retry
// machine's states. The error to surface rides along for the fatal state.
func classifyShardAttempt(res database.CommandResult, err error, dbName string, class *metadata.ClassMetadata) (shardOutcome, error) {
	if err != nil {
		ce, ok := database.AsCommandError(err)
		if !ok {
			return shardFatal, err
		}
		if ce.Code == codeIllegalOperation || ce.Code == codeAlreadyInitialized || ce.Message == msgAlreadySharded {
			return shardDone, nil
		}
		if strings.Contains(res.ErrMsg, msgMissingShardIndex) {
			return shardNeedsIndex, nil
		}
		return shardFatal, fmt.Errorf("failed to shard collection for %s: %w", class.Name, err)
	}

	if res.Succeeded() || res.Code == codeIllegalOperation || res.ErrMsg == msgAlreadySharded {
		return shardDone, nil
	}
	if strings.Contains(res.ErrMsg, msgMissingShardIndex) {
		return shardNeedsIndex, nil
	}
	return shardFatal, &ShardingError{Database: dbName, Document: class.Name, Message: res.ErrMsg}
}

// enableSharding turns on sharding for a database. Doing so twice is not
// an error.
func (m *Manager) enableSharding(ctx context.Context, dbName string) error {
	admin := m.client.Database(m.adminDatabase)
	cmd := bson.D{{Key: "enableSharding", Value: dbName}}

	if _, err := admin.RunCommand(ctx, cmd); err != nil {
		ce, ok := database.AsCommandError(err)
		if !ok {
			return err
		}
		if ce.Code == codeAlreadyInitialized || ce.Message == msgAlreadyEnabled {
			return nil
		}
		return &ShardingError{Database: dbName, Message: ce.Message}
	}
	return nil
}

// runShardCollection issues shardCollection through the admin database,
// appending any declared shard options in a stable order.
func (m *Manager) runShardCollection(ctx context.Context, db database.Database, class *metadata.ClassMetadata) (database.CommandResult, error) {
	cmd := bson.D{
		{Key: "shardCollection", Value: db.Name() + "." + class.Collection},
		{Key: "key", Value: class.ShardKey.Keys},
	}

	opts := make([]string, 0, len(class.ShardKey.Options))
	for opt := range class.ShardKey.Options {
		opts = append(opts, opt)
	}
	sort.Strings(opts)
	for _, opt := range opts {
		cmd = append(cmd, bson.E{Key: opt, Value: class.ShardKey.Options[opt]})
	}

	admin := m.client.Database(m.adminDatabase)
	return admin.RunCommand(ctx, cmd)
}
