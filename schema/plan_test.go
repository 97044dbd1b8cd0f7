package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

func TestPlanDocumentIndexesInSync(t *testing.T) {
	m, client := newTestManager(userClass())
	client.database("app").collection("users").indexes = []database.IndexDescription{
		{Key: bson.D{{Key: "_id", Value: int32(1)}}, Options: bson.M{"name": "_id_"}},
		{Key: bson.D{{Key: "em", Value: int32(1)}}, Options: bson.M{"name": "em_1", "unique": true}},
		{Key: bson.D{{Key: "createdAt", Value: int32(1)}}, Options: bson.M{"name": "createdAt_1", "expireAfterSeconds": int32(3600)}},
	}

	plan, err := m.PlanDocumentIndexes(context.Background(), "user")
	require.NoError(t, err)
	require.True(t, plan.InSync())
	require.Empty(t, plan.Create)
	require.Empty(t, plan.Drop)
	require.Equal(t, "user", plan.Document)
	require.Equal(t, "users", plan.Collection)
}

func TestPlanDocumentIndexesChanges(t *testing.T) {
	m, client := newTestManager(userClass())
	coll := client.database("app").collection("users")
	coll.indexes = []database.IndexDescription{
		{Key: bson.D{{Key: "_id", Value: int32(1)}}, Options: bson.M{"name": "_id_"}},
		{Key: bson.D{{Key: "username", Value: int32(1)}}, Options: bson.M{"name": "username_1"}},
		{Key: bson.D{{Key: "em", Value: int32(1)}}, Options: bson.M{"name": "em_1", "unique": true}},
	}

	plan, err := m.PlanDocumentIndexes(context.Background(), "user")
	require.NoError(t, err)
	require.False(t, plan.InSync())

	require.Len(t, plan.Drop, 1)
	require.Equal(t, "username_1", plan.Drop[0].Name())
	require.Len(t, plan.Create, 1)
	require.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, plan.Create[0].Keys)

	// Applying the update issues exactly the commands the plan predicted.
	require.NoError(t, m.UpdateDocumentIndexes(context.Background(), "user", 0))
	require.Equal(t, []string{"username_1"}, coll.dropped)
	require.Len(t, coll.created, 1)
	require.Equal(t, plan.Create[0].Keys, coll.created[0].keys)
}

func TestPlanIndexes(t *testing.T) {
	order := ownerClass("order", "orders", metadata.Index{Keys: bson.D{{Key: "placedAt", Value: -1}}})
	m, _ := newTestManager(userClass(), order)

	plans, err := m.PlanIndexes(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, "user", plans[0].Document)
	require.Equal(t, "order", plans[1].Document)
	require.Len(t, plans[1].Create, 1)
}

func TestPlanDocumentIndexesRequiresOwner(t *testing.T) {
	m, _ := newTestManager(embeddedClass("address"))

	_, err := m.PlanDocumentIndexes(context.Background(), "address")
	require.True(t, IsNotCollectionOwner(err))
}
