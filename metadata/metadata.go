// Package metadata describes how mapped document types bind to MongoDB:
// which database and collection a document lives in, the indexes its
// collection carries, how embedded and referenced fields are stored, and
// the shard key, if any. The schema package consumes this model to bring
// live collections in line with what is declared here.
package metadata

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ReferenceStorage controls how a reference field is persisted
type ReferenceStorage int

const (
	// StoreAsDBRef stores the reference as a DBRef document without a
	// database name. This is the default.
	StoreAsDBRef ReferenceStorage = iota

	// StoreAsDBRefWithDB stores the reference as a DBRef document
	// including the database name.
	StoreAsDBRefWithDB

	// StoreAsID stores only the referenced document's identifier.
	StoreAsID

	// StoreAsRef stores a reference document with an "id" field.
	StoreAsRef
)

// String returns the string representation of the storage strategy
func (s ReferenceStorage) String() string {
	switch s {
	case StoreAsDBRef:
		return "dbRef"
	case StoreAsDBRefWithDB:
		return "dbRefWithDb"
	case StoreAsID:
		return "id"
	case StoreAsRef:
		return "ref"
	default:
		return "unknown"
	}
}

// ParseReferenceStorage converts a string to a ReferenceStorage
func ParseReferenceStorage(s string) (ReferenceStorage, error) {
	switch s {
	case "dbRef":
		return StoreAsDBRef, nil
	case "dbRefWithDb":
		return StoreAsDBRefWithDB, nil
	case "id":
		return StoreAsID, nil
	case "ref":
		return StoreAsRef, nil
	default:
		return 0, fmt.Errorf("unknown reference storage strategy: %s", s)
	}
}

// ReferenceFieldName returns the database field a key targeting a reference
// must address, given how the reference is stored. An empty pathPrefix
// yields the bare identifier field.
func ReferenceFieldName(storeAs ReferenceStorage, pathPrefix string) string {
	switch storeAs {
	case StoreAsID:
		return pathPrefix
	case StoreAsRef:
		if pathPrefix == "" {
			return "id"
		}
		return pathPrefix + ".id"
	default:
		if pathPrefix == "" {
			return "$id"
		}
		return pathPrefix + ".$id"
	}
}

// Index declares a single index on a document's collection. Keys is an
// ordered mapping of field name to direction (1, -1) or index type
// ("text", "2dsphere", "hashed", ...). Options holds raw creation options
// such as unique, sparse, expireAfterSeconds or weights.
type Index struct {
	Keys    bson.D
	Options bson.M
}

// Name returns the explicit index name, or "" when none was declared.
func (i Index) Name() string {
	if name, ok := i.Options["name"].(string); ok {
		return name
	}
	return ""
}

// Clone returns a copy whose Keys and Options may be modified without
// affecting the original. Nested option values are shared.
func (i Index) Clone() Index {
	out := Index{}
	if i.Keys != nil {
		out.Keys = make(bson.D, len(i.Keys))
		copy(out.Keys, i.Keys)
	}
	if i.Options != nil {
		out.Options = make(bson.M, len(i.Options))
		for k, v := range i.Options {
			out.Options[k] = v
		}
	}
	return out
}

// ShardKey declares how a document's collection is sharded. Options are
// passed through to the shardCollection command (unique, numInitialChunks).
type ShardKey struct {
	Keys    bson.D
	Options bson.M
}

// FieldMapping describes a single mapped field of a document. Only the
// pieces relevant to schema management are modeled: embedded and reference
// fields contribute to or rename index keys.
type FieldMapping struct {
	FieldName string // name of the field in the application
	Name      string // name of the field in the database; FieldName when empty

	Embedded         bool
	Reference        bool
	StoreAs          ReferenceStorage  // reference storage strategy
	TargetDocument   string            // target document name, "" for untyped mappings
	DiscriminatorMap map[string]string // discriminator value -> document name
}

// StorageName returns the database field name for the mapping.
func (f FieldMapping) StorageName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.FieldName
}

// ClassMetadata is the complete schema-relevant description of one mapped
// document type.
type ClassMetadata struct {
	Name       string // unique document name
	Database   string // database name; the manager's default applies when empty
	Collection string // collection name

	// Collection creation options, forwarded verbatim on create.
	CollectionCapped bool
	CollectionSize   int64
	CollectionMax    int64

	// Optional document validator, applied on create and via collMod.
	Validator        bson.D
	ValidationLevel  string
	ValidationAction string

	Indexes       []Index
	FieldMappings []FieldMapping
	ShardKey      *ShardKey

	// Types that do not own a collection of their own.
	MappedSuperclass    bool
	EmbeddedDocument    bool
	QueryResultDocument bool
}

// OwnsCollection reports whether the document type maps to a collection of
// its own. Mapped superclasses, embedded documents and query result
// documents do not.
func (c *ClassMetadata) OwnsCollection() bool {
	return !c.MappedSuperclass && !c.EmbeddedDocument && !c.QueryResultDocument
}

// IsSharded reports whether a shard key is declared.
func (c *ClassMetadata) IsSharded() bool {
	return c.ShardKey != nil && len(c.ShardKey.Keys) > 0
}

// Mapping returns the field mapping registered under the given application
// field name.
func (c *ClassMetadata) Mapping(fieldName string) (FieldMapping, bool) {
	for _, fm := range c.FieldMappings {
		if fm.FieldName == fieldName {
			return fm, true
		}
	}
	return FieldMapping{}, false
}

// Validate checks the metadata for contradictory or incomplete mappings.
func (c *ClassMetadata) Validate() error {
	if c.Name == "" {
		return &MappingError{Document: c.Name, Reason: "document name is required"}
	}
	if c.OwnsCollection() && c.Collection == "" {
		return &MappingError{Document: c.Name, Reason: "collection name is required"}
	}

	seen := make(map[string]bool, len(c.FieldMappings))
	for _, fm := range c.FieldMappings {
		if fm.FieldName == "" {
			return &MappingError{Document: c.Name, Reason: "field mapping without a field name"}
		}
		if seen[fm.FieldName] {
			return &MappingError{Document: c.Name, Field: fm.FieldName, Reason: "field is mapped twice"}
		}
		seen[fm.FieldName] = true

		if fm.Embedded && fm.Reference {
			return &MappingError{Document: c.Name, Field: fm.FieldName, Reason: "field cannot be both embedded and a reference"}
		}
	}

	for _, idx := range c.Indexes {
		if len(idx.Keys) == 0 {
			return &MappingError{Document: c.Name, Reason: "index without keys"}
		}
	}

	if c.ShardKey != nil && len(c.ShardKey.Keys) == 0 {
		return &MappingError{Document: c.Name, Reason: "shard key without keys"}
	}

	return nil
}
