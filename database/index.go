package database

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// IndexDescription is one entry of a collection's listIndexes output.
// Key holds the ordered key pattern; Options holds every other field of
// the description (name, unique, weights, v, ...) as the server reported
// them.
type IndexDescription struct {
	Key     bson.D
	Options bson.M
}

// Name returns the server-reported index name.
func (d IndexDescription) Name() string {
	if name, ok := d.Options["name"].(string); ok {
		return name
	}
	return ""
}

// DefaultIndexName returns the name the server assigns an index created
// without an explicit name: key fields and values joined by underscores.
func DefaultIndexName(keys bson.D) string {
	parts := make([]string, 0, len(keys)*2)
	for _, elem := range keys {
		parts = append(parts, elem.Key, indexValueString(elem.Value))
	}
	return strings.Join(parts, "_")
}

func indexValueString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
