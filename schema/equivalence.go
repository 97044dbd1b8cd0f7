package schema

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/database"
	"github.com/docket-db/docket/metadata"
)

// Equivalent reports whether an index observed on the server satisfies a
// declared index. The comparison tolerates representational noise: numeric
// type differences, key order inside option documents, and the synthetic
// fields text indexes are stored with. Index names never enter into it.
func Equivalent(observed database.IndexDescription, declared metadata.Index) bool {
	if !equivalentKeys(observed, declared) {
		return false
	}

	oOpts := observed.Options
	dOpts := declared.Options

	if truthy(oOpts["sparse"]) != truthy(dOpts["sparse"]) {
		return false
	}
	if truthy(oOpts["unique"]) != truthy(dOpts["unique"]) {
		return false
	}
	// A unique index without dropDups on the server cannot satisfy a
	// declared unique index with dropDups; the reverse is fine.
	if truthy(oOpts["unique"]) && !truthy(oOpts["dropDups"]) && truthy(dOpts["dropDups"]) {
		return false
	}

	for _, opt := range []string{"bits", "max", "min"} {
		oVal, oSet := oOpts[opt]
		dVal, dSet := dOpts[opt]
		if oSet != dSet {
			return false
		}
		if oSet && !looseEqual(oVal, dVal) {
			return false
		}
	}

	oPFE, dPFE := oOpts["partialFilterExpression"], dOpts["partialFilterExpression"]
	if truthy(oPFE) != truthy(dPFE) {
		return false
	}
	if oPFE != nil && dPFE != nil && !looseEqual(oPFE, dPFE) {
		return false
	}

	if weights, ok := oOpts["weights"]; ok && !equivalentTextWeights(weights, declared) {
		return false
	}

	// Text indexes always report defaults for these, so they only count
	// when both sides carry explicit values.
	for _, opt := range []string{"default_language", "language_override", "textIndexVersion"} {
		oVal, oSet := oOpts[opt]
		dVal, dSet := dOpts[opt]
		if oSet && dSet && !looseEqual(oVal, dVal) {
			return false
		}
	}

	return true
}

// equivalentKeys compares key documents with text fields factored out.
// Text indexes are stored with synthetic _fts and _ftsx fields in place
// of the declared text keys, so both sides are stripped before comparing.
// Key order is not significant here; the server reports keys in creation
// order, which a declaration need not match.
func equivalentKeys(observed database.IndexDescription, declared metadata.Index) bool {
	oKeys := make(map[string]interface{})
	for _, elem := range observed.Key {
		if elem.Key == "_fts" || elem.Key == "_ftsx" {
			continue
		}
		oKeys[elem.Key] = elem.Value
	}

	dKeys := make(map[string]interface{})
	for _, elem := range declared.Keys {
		if s, ok := elem.Value.(string); ok && s == "text" {
			continue
		}
		dKeys[elem.Key] = elem.Value
	}

	return looseEqual(oKeys, dKeys)
}

// equivalentTextWeights checks server-reported text weights against the
// declaration. Declared text keys without an explicit weight default to 1.
func equivalentTextWeights(observed interface{}, declared metadata.Index) bool {
	expected := make(map[string]interface{})
	if w, ok := declared.Options["weights"]; ok {
		for key, value := range documentToMap(w) {
			expected[key] = value
		}
	}
	for _, elem := range declared.Keys {
		if s, ok := elem.Value.(string); ok && s == "text" {
			if _, set := expected[elem.Key]; !set {
				expected[elem.Key] = 1
			}
		}
	}
	return looseEqual(observed, expected)
}

// documentToMap flattens the document shapes an option value may arrive
// in. Non-documents come back empty.
func documentToMap(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case bson.M:
		return v
	case map[string]interface{}:
		return v
	case bson.D:
		out := make(map[string]interface{}, len(v))
		for _, elem := range v {
			out[elem.Key] = elem.Value
		}
		return out
	default:
		return nil
	}
}

// truthy mirrors loose emptiness: nil, false, numeric zero, empty strings
// and empty documents all count as unset.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case bson.D:
		return len(v) > 0
	case bson.M:
		return len(v) > 0
	case bson.A:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	case []interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// looseEqual compares two values after normalization, so 1, int64(1) and
// 1.0 agree and document key order is ignored.
func looseEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize rewrites a value into a canonical shape: every number becomes
// a float64, every document a map, every array a slice, recursively.
func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case bson.D:
		out := make(map[string]interface{}, len(v))
		for _, elem := range v {
			out[elem.Key] = normalize(elem.Value)
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = normalize(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = normalize(val)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalize(val)
		}
		return out
	default:
		return value
	}
}
