package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

func userClass() *metadata.ClassMetadata {
	user := ownerClass("user", "users",
		metadata.Index{Keys: bson.D{{Key: "email", Value: 1}}, Options: bson.M{"unique": true}},
		metadata.Index{Keys: bson.D{{Key: "createdAt", Value: 1}}, Options: bson.M{"expireAfterSeconds": 3600}},
	)
	user.FieldMappings = []metadata.FieldMapping{
		{FieldName: "email", Name: "em"},
	}
	return user
}

func TestEnsureDocumentIndexes(t *testing.T) {
	m, client := newTestManager(userClass())

	require.NoError(t, m.EnsureDocumentIndexes(context.Background(), "user", 0))

	coll := client.database("app").collection("users")
	require.Len(t, coll.created, 2)
	require.Equal(t, bson.D{{Key: "em", Value: 1}}, coll.created[0].keys)
	require.Equal(t, bson.M{"unique": true}, coll.created[0].opts)
	require.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, coll.created[1].keys)
	require.Equal(t, bson.M{"expireAfterSeconds": 3600}, coll.created[1].opts)
}

func TestEnsureDocumentIndexesMergesTimeout(t *testing.T) {
	user := ownerClass("user", "users",
		metadata.Index{Keys: bson.D{{Key: "email", Value: 1}}},
		metadata.Index{Keys: bson.D{{Key: "name", Value: 1}}, Options: bson.M{"timeout": int64(5000)}},
	)
	m, client := newTestManager(user)

	require.NoError(t, m.EnsureDocumentIndexes(context.Background(), "user", 15000))

	coll := client.database("app").collection("users")
	require.Len(t, coll.created, 2)
	require.Equal(t, bson.M{"timeout": int64(15000)}, coll.created[0].opts)
	require.Equal(t, bson.M{"timeout": int64(5000)}, coll.created[1].opts)
}

func TestEnsureDocumentIndexesSkipsExisting(t *testing.T) {
	m, client := newTestManager(userClass())
	coll := client.database("app").collection("users")
	coll.indexes = []database.IndexDescription{
		{Key: bson.D{{Key: "_id", Value: int32(1)}}, Options: bson.M{"name": "_id_"}},
		{Key: bson.D{{Key: "em", Value: int32(1)}}, Options: bson.M{"name": "em_1", "unique": true}},
		{Key: bson.D{{Key: "stale", Value: int32(1)}}, Options: bson.M{"name": "stale_1"}},
	}

	require.NoError(t, m.EnsureDocumentIndexes(context.Background(), "user", 0))

	require.Len(t, coll.created, 1)
	require.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, coll.created[0].keys)
	require.Empty(t, coll.dropped)
}

func TestEnsureDocumentIndexesRejectsNonOwners(t *testing.T) {
	tests := []struct {
		name  string
		class *metadata.ClassMetadata
	}{
		{name: "embedded", class: &metadata.ClassMetadata{Name: "address", EmbeddedDocument: true}},
		{name: "mapped superclass", class: &metadata.ClassMetadata{Name: "base", MappedSuperclass: true}},
		{name: "query result", class: &metadata.ClassMetadata{Name: "stats", QueryResultDocument: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, client := newTestManager(tt.class)

			err := m.EnsureDocumentIndexes(context.Background(), tt.class.Name, 0)
			require.Error(t, err)
			require.True(t, IsNotCollectionOwner(err))
			require.Empty(t, client.databases)
		})
	}
}

func TestEnsureIndexesSkipsNonOwners(t *testing.T) {
	address := embeddedClass("address", metadata.Index{Keys: bson.D{{Key: "city", Value: 1}}})
	m, client := newTestManager(userClass(), address)

	require.NoError(t, m.EnsureIndexes(context.Background(), 0))

	require.Len(t, client.databases, 1)
	app := client.database("app")
	require.Len(t, app.collections, 1)
	require.Len(t, app.collection("users").created, 2)
}

func TestUpdateDocumentIndexesDropsStale(t *testing.T) {
	m, client := newTestManager(userClass())
	coll := client.database("app").collection("users")
	coll.indexes = []database.IndexDescription{
		{Key: bson.D{{Key: "_id", Value: int32(1)}}, Options: bson.M{"name": "_id_"}},
		{Key: bson.D{{Key: "username", Value: int32(1)}}, Options: bson.M{"name": "username_1"}},
		{Key: bson.D{{Key: "em", Value: int32(1)}}, Options: bson.M{"name": "em_1", "unique": true}},
	}

	require.NoError(t, m.UpdateDocumentIndexes(context.Background(), "user", 0))

	require.Equal(t, []string{"username_1"}, coll.dropped)
	require.Len(t, coll.created, 1)
	require.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, coll.created[0].keys)
}

func TestUpdateDocumentIndexesInSync(t *testing.T) {
	m, client := newTestManager(userClass())
	coll := client.database("app").collection("users")
	coll.indexes = []database.IndexDescription{
		{Key: bson.D{{Key: "_id", Value: int32(1)}}, Options: bson.M{"name": "_id_"}},
		{Key: bson.D{{Key: "em", Value: int32(1)}}, Options: bson.M{"name": "em_1", "unique": true}},
		{Key: bson.D{{Key: "createdAt", Value: int32(1)}}, Options: bson.M{"name": "createdAt_1", "expireAfterSeconds": int32(3600)}},
	}

	require.NoError(t, m.UpdateDocumentIndexes(context.Background(), "user", 0))

	require.Empty(t, coll.dropped)
	require.Empty(t, coll.created)
}

func TestUpdateDocumentIndexesSkipsUnnamed(t *testing.T) {
	m, client := newTestManager(userClass())
	coll := client.database("app").collection("users")
	coll.indexes = []database.IndexDescription{
		{Key: bson.D{{Key: "legacy", Value: int32(1)}}, Options: bson.M{}},
	}

	require.NoError(t, m.UpdateDocumentIndexes(context.Background(), "user", 0))

	require.Empty(t, coll.dropped)
	require.Len(t, coll.created, 2)
}

func TestUpdateDocumentIndexesListFailure(t *testing.T) {
	m, client := newTestManager(userClass())
	client.database("app").collection("users").listErr = errors.New("cursor timeout")

	err := m.UpdateDocumentIndexes(context.Background(), "user", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to list indexes for users")
}

func TestEnsureDocumentIndexesCreateFailure(t *testing.T) {
	m, client := newTestManager(userClass())
	client.database("app").collection("users").createErr = errors.New("connection reset")

	err := m.EnsureDocumentIndexes(context.Background(), "user", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create index on users")
}

func TestDeleteDocumentIndexes(t *testing.T) {
	m, client := newTestManager(userClass())

	require.NoError(t, m.DeleteDocumentIndexes(context.Background(), "user"))

	require.True(t, client.database("app").collection("users").droppedAll)
}

func TestDeleteIndexes(t *testing.T) {
	order := ownerClass("order", "orders")
	m, client := newTestManager(userClass(), order)

	require.NoError(t, m.DeleteIndexes(context.Background()))

	require.True(t, client.database("app").collection("users").droppedAll)
	require.True(t, client.database("app").collection("orders").droppedAll)
}
