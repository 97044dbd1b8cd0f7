package metadata

import (
	"fmt"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// mappingFile mirrors the on-disk layout of a document mapping file.
type mappingFile struct {
	Documents []documentMapping `yaml:"documents"`
}

type documentMapping struct {
	Name        string `yaml:"name"`
	Database    string `yaml:"database"`
	Collection  string `yaml:"collection"`
	Capped      bool   `yaml:"capped"`
	Size        int64  `yaml:"size"`
	Max         int64  `yaml:"max"`
	Superclass  bool   `yaml:"superclass"`
	Embedded    bool   `yaml:"embedded"`
	QueryResult bool   `yaml:"queryResult"`

	Validator        yaml.Node `yaml:"validator"`
	ValidationLevel  string    `yaml:"validationLevel"`
	ValidationAction string    `yaml:"validationAction"`

	Indexes  []indexMapping   `yaml:"indexes"`
	Fields   []mappedField    `yaml:"fields"`
	ShardKey *shardKeyMapping `yaml:"shardKey"`
}

type indexMapping struct {
	Keys    yaml.Node              `yaml:"keys"`
	Options map[string]interface{} `yaml:"options"`
}

type mappedField struct {
	Field          string            `yaml:"field"`
	Name           string            `yaml:"name"`
	Embedded       bool              `yaml:"embedded"`
	Reference      bool              `yaml:"reference"`
	StoreAs        string            `yaml:"storeAs"`
	Target         string            `yaml:"target"`
	Discriminators map[string]string `yaml:"discriminators"`
}

type shardKeyMapping struct {
	Keys    yaml.Node              `yaml:"keys"`
	Options map[string]interface{} `yaml:"options"`
}

// LoadFile reads document mappings from a YAML file and returns the
// declared metadata in file order. The result is not registered anywhere;
// pass it to a Registry.
func LoadFile(path string) ([]*ClassMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	classes, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return classes, nil
}

// Load reads document mappings in YAML form from r.
func Load(r io.Reader) ([]*ClassMetadata, error) {
	var file mappingFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse mappings: %w", err)
	}

	classes := make([]*ClassMetadata, 0, len(file.Documents))
	for _, doc := range file.Documents {
		class, err := doc.toMetadata()
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

func (d documentMapping) toMetadata() (*ClassMetadata, error) {
	class := &ClassMetadata{
		Name:                d.Name,
		Database:            d.Database,
		Collection:          d.Collection,
		CollectionCapped:    d.Capped,
		CollectionSize:      d.Size,
		CollectionMax:       d.Max,
		ValidationLevel:     d.ValidationLevel,
		ValidationAction:    d.ValidationAction,
		MappedSuperclass:    d.Superclass,
		EmbeddedDocument:    d.Embedded,
		QueryResultDocument: d.QueryResult,
	}

	if !d.Validator.IsZero() {
		validator, err := nodeToOrderedDoc(&d.Validator)
		if err != nil {
			return nil, fmt.Errorf("document %s: validator: %w", d.Name, err)
		}
		class.Validator = validator
	}

	for i, idx := range d.Indexes {
		keys, err := nodeToOrderedDoc(&idx.Keys)
		if err != nil {
			return nil, fmt.Errorf("document %s: index %d: %w", d.Name, i, err)
		}
		class.Indexes = append(class.Indexes, Index{Keys: keys, Options: bson.M(idx.Options)})
	}

	for _, f := range d.Fields {
		fm := FieldMapping{
			FieldName:        f.Field,
			Name:             f.Name,
			Embedded:         f.Embedded,
			Reference:        f.Reference,
			TargetDocument:   f.Target,
			DiscriminatorMap: f.Discriminators,
		}
		if f.StoreAs != "" {
			storeAs, err := ParseReferenceStorage(f.StoreAs)
			if err != nil {
				return nil, fmt.Errorf("document %s: field %s: %w", d.Name, f.Field, err)
			}
			fm.StoreAs = storeAs
		}
		class.FieldMappings = append(class.FieldMappings, fm)
	}

	if d.ShardKey != nil {
		keys, err := nodeToOrderedDoc(&d.ShardKey.Keys)
		if err != nil {
			return nil, fmt.Errorf("document %s: shard key: %w", d.Name, err)
		}
		class.ShardKey = &ShardKey{Keys: keys, Options: bson.M(d.ShardKey.Options)}
	}

	return class, nil
}

// nodeToOrderedDoc converts a YAML mapping node to bson.D, preserving the
// key order of the source file. Plain map decoding would lose it.
func nodeToOrderedDoc(node *yaml.Node) (bson.D, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at line %d", node.Line)
	}

	doc := make(bson.D, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return nil, err
		}
		value, err := nodeToValue(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		doc = append(doc, bson.E{Key: key, Value: value})
	}
	return doc, nil
}

func nodeToValue(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return nodeToOrderedDoc(node)
	case yaml.SequenceNode:
		arr := make(bson.A, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := nodeToValue(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		return arr, nil
	case yaml.AliasNode:
		return nodeToValue(node.Alias)
	default:
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return value, nil
	}
}
