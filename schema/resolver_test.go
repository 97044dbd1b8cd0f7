package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/metadata"
)

func ownerClass(name, collection string, indexes ...metadata.Index) *metadata.ClassMetadata {
	return &metadata.ClassMetadata{
		Name:       name,
		Database:   "app",
		Collection: collection,
		Indexes:    indexes,
	}
}

func embeddedClass(name string, indexes ...metadata.Index) *metadata.ClassMetadata {
	return &metadata.ClassMetadata{
		Name:             name,
		EmbeddedDocument: true,
		Indexes:          indexes,
	}
}

func TestDocumentIndexesTranslatesFieldNames(t *testing.T) {
	user := ownerClass("user", "users", metadata.Index{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: bson.M{"unique": true},
	})
	user.FieldMappings = []metadata.FieldMapping{
		{FieldName: "email", Name: "em"},
	}

	m, _ := newTestManager(user)
	indexes, err := m.DocumentIndexes("user")
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	require.Equal(t, bson.D{{Key: "em", Value: 1}}, indexes[0].Keys)
	require.Equal(t, bson.M{"unique": true}, indexes[0].Options)
}

func TestDocumentIndexesEmbeddedPrefix(t *testing.T) {
	address := embeddedClass("address", metadata.Index{
		Keys: bson.D{{Key: "city", Value: 1}, {Key: "zip", Value: 1}},
	})
	order := ownerClass("order", "orders", metadata.Index{
		Keys: bson.D{{Key: "placedAt", Value: -1}},
	})
	order.FieldMappings = []metadata.FieldMapping{
		{FieldName: "shipping", Name: "ship", Embedded: true, TargetDocument: "address"},
	}

	m, _ := newTestManager(order, address)
	indexes, err := m.DocumentIndexes("order")
	require.NoError(t, err)
	require.Len(t, indexes, 2)
	require.Equal(t, bson.D{{Key: "placedAt", Value: -1}}, indexes[0].Keys)
	require.Equal(t, bson.D{{Key: "ship.city", Value: 1}, {Key: "ship.zip", Value: 1}}, indexes[1].Keys)
}

func TestDocumentIndexesNestedEmbedding(t *testing.T) {
	geo := embeddedClass("geo", metadata.Index{
		Keys: bson.D{{Key: "point", Value: "2dsphere"}},
	})
	address := embeddedClass("address")
	address.FieldMappings = []metadata.FieldMapping{
		{FieldName: "location", Embedded: true, TargetDocument: "geo"},
	}
	venue := ownerClass("venue", "venues")
	venue.FieldMappings = []metadata.FieldMapping{
		{FieldName: "address", Embedded: true, TargetDocument: "address"},
	}

	m, _ := newTestManager(venue, address, geo)
	indexes, err := m.DocumentIndexes("venue")
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	require.Equal(t, bson.D{{Key: "address.location.point", Value: "2dsphere"}}, indexes[0].Keys)
}

func TestDocumentIndexesEmbeddingCycleTerminates(t *testing.T) {
	a := ownerClass("a", "as", metadata.Index{Keys: bson.D{{Key: "av", Value: 1}}})
	a.FieldMappings = []metadata.FieldMapping{
		{FieldName: "b", Embedded: true, TargetDocument: "b"},
	}
	b := embeddedClass("b", metadata.Index{Keys: bson.D{{Key: "bv", Value: 1}}})
	b.FieldMappings = []metadata.FieldMapping{
		{FieldName: "a", Embedded: true, TargetDocument: "a"},
	}

	m, _ := newTestManager(a, b)
	indexes, err := m.DocumentIndexes("a")
	require.NoError(t, err)
	require.Len(t, indexes, 2)
	require.Equal(t, bson.D{{Key: "av", Value: 1}}, indexes[0].Keys)
	require.Equal(t, bson.D{{Key: "b.bv", Value: 1}}, indexes[1].Keys)
}

func TestDocumentIndexesSameTargetEmbeddedTwice(t *testing.T) {
	address := embeddedClass("address", metadata.Index{
		Keys: bson.D{{Key: "city", Value: 1}},
	})
	invoice := ownerClass("invoice", "invoices")
	invoice.FieldMappings = []metadata.FieldMapping{
		{FieldName: "billing", Embedded: true, TargetDocument: "address"},
		{FieldName: "shipping", Embedded: true, TargetDocument: "address"},
	}

	m, _ := newTestManager(invoice, address)
	indexes, err := m.DocumentIndexes("invoice")
	require.NoError(t, err)
	require.Len(t, indexes, 2)
	require.Equal(t, bson.D{{Key: "billing.city", Value: 1}}, indexes[0].Keys)
	require.Equal(t, bson.D{{Key: "shipping.city", Value: 1}}, indexes[1].Keys)
}

func TestDocumentIndexesDiscriminatedEmbedding(t *testing.T) {
	image := embeddedClass("image", metadata.Index{Keys: bson.D{{Key: "width", Value: 1}}})
	video := embeddedClass("video", metadata.Index{Keys: bson.D{{Key: "duration", Value: 1}}})
	post := ownerClass("post", "posts")
	post.FieldMappings = []metadata.FieldMapping{
		{FieldName: "attachment", Embedded: true, DiscriminatorMap: map[string]string{
			"img": "image",
			"vid": "video",
		}},
	}

	m, _ := newTestManager(post, image, video)
	indexes, err := m.DocumentIndexes("post")
	require.NoError(t, err)
	require.Len(t, indexes, 2)
	require.Equal(t, bson.D{{Key: "attachment.width", Value: 1}}, indexes[0].Keys)
	require.Equal(t, bson.D{{Key: "attachment.duration", Value: 1}}, indexes[1].Keys)
}

func TestDocumentIndexesReferenceKeys(t *testing.T) {
	tests := []struct {
		name    string
		storeAs metadata.ReferenceStorage
		want    string
	}{
		{name: "dbRef", storeAs: metadata.StoreAsDBRef, want: "owner.$id"},
		{name: "dbRefWithDb", storeAs: metadata.StoreAsDBRefWithDB, want: "owner.$id"},
		{name: "id", storeAs: metadata.StoreAsID, want: "owner"},
		{name: "ref", storeAs: metadata.StoreAsRef, want: "owner.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := ownerClass("task", "tasks", metadata.Index{
				Keys: bson.D{{Key: "owner", Value: 1}, {Key: "due", Value: -1}},
			})
			task.FieldMappings = []metadata.FieldMapping{
				{FieldName: "owner", Reference: true, StoreAs: tt.storeAs, TargetDocument: "user"},
			}
			user := ownerClass("user", "users")

			m, _ := newTestManager(task, user)
			indexes, err := m.DocumentIndexes("task")
			require.NoError(t, err)
			require.Len(t, indexes, 1)
			require.Equal(t, bson.D{{Key: tt.want, Value: 1}, {Key: "due", Value: -1}}, indexes[0].Keys)
		})
	}
}

func TestDocumentIndexesReferenceDoesNotRecurse(t *testing.T) {
	user := ownerClass("user", "users", metadata.Index{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	task := ownerClass("task", "tasks")
	task.FieldMappings = []metadata.FieldMapping{
		{FieldName: "owner", Reference: true, StoreAs: metadata.StoreAsDBRef, TargetDocument: "user"},
	}

	m, _ := newTestManager(task, user)
	indexes, err := m.DocumentIndexes("task")
	require.NoError(t, err)
	require.Empty(t, indexes)
}

func TestDocumentIndexesLeavesMetadataUntouched(t *testing.T) {
	address := embeddedClass("address", metadata.Index{
		Keys:    bson.D{{Key: "city", Value: 1}},
		Options: bson.M{"sparse": true},
	})
	order := ownerClass("order", "orders", metadata.Index{
		Keys: bson.D{{Key: "ref", Value: 1}},
	})
	order.FieldMappings = []metadata.FieldMapping{
		{FieldName: "shipping", Embedded: true, TargetDocument: "address"},
		{FieldName: "ref", Reference: true, StoreAs: metadata.StoreAsDBRef, TargetDocument: "address"},
	}

	m, _ := newTestManager(order, address)
	resolved, err := m.DocumentIndexes("order")
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	resolved[1].Options["mutated"] = true

	require.Equal(t, bson.D{{Key: "ref", Value: 1}}, order.Indexes[0].Keys)
	require.Equal(t, bson.D{{Key: "city", Value: 1}}, address.Indexes[0].Keys)
	require.Equal(t, bson.M{"sparse": true}, address.Indexes[0].Options)
}

func TestDocumentIndexesUnknownDocument(t *testing.T) {
	m, _ := newTestManager()
	_, err := m.DocumentIndexes("ghost")
	require.Error(t, err)
	require.True(t, metadata.IsNotRegistered(err))
}
