package database

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// translateIndexOptions maps loose index creation options onto the
// driver's typed options. The "timeout" key (milliseconds) bounds the
// createIndexes command itself rather than describing the index. The
// legacy "dropDups" key never reaches the server; it only participates in
// index comparison.
func translateIndexOptions(loose bson.M) (*options.IndexOptions, *options.CreateIndexesOptions) {
	idx := options.Index()
	var create *options.CreateIndexesOptions

	for key, value := range loose {
		switch key {
		case "name":
			if s, ok := asString(value); ok {
				idx.SetName(s)
			}
		case "unique":
			if b, ok := asBool(value); ok {
				idx.SetUnique(b)
			}
		case "sparse":
			if b, ok := asBool(value); ok {
				idx.SetSparse(b)
			}
		case "background":
			if b, ok := asBool(value); ok {
				idx.SetBackground(b)
			}
		case "hidden":
			if b, ok := asBool(value); ok {
				idx.SetHidden(b)
			}
		case "expireAfterSeconds":
			if n, ok := asInt32(value); ok {
				idx.SetExpireAfterSeconds(n)
			}
		case "bits":
			if n, ok := asInt32(value); ok {
				idx.SetBits(n)
			}
		case "min":
			if f, ok := asFloat64(value); ok {
				idx.SetMin(f)
			}
		case "max":
			if f, ok := asFloat64(value); ok {
				idx.SetMax(f)
			}
		case "weights":
			idx.SetWeights(value)
		case "default_language":
			if s, ok := asString(value); ok {
				idx.SetDefaultLanguage(s)
			}
		case "language_override":
			if s, ok := asString(value); ok {
				idx.SetLanguageOverride(s)
			}
		case "textIndexVersion":
			if n, ok := asInt32(value); ok {
				idx.SetTextVersion(n)
			}
		case "2dsphereIndexVersion":
			if n, ok := asInt32(value); ok {
				idx.SetSphereVersion(n)
			}
		case "partialFilterExpression":
			idx.SetPartialFilterExpression(value)
		case "storageEngine":
			idx.SetStorageEngine(value)
		case "wildcardProjection":
			idx.SetWildcardProjection(value)
		case "collation":
			if coll := looseCollation(value); coll != nil {
				idx.SetCollation(coll)
			}
		case "timeout":
			if ms, ok := asInt64(value); ok && ms > 0 {
				create = options.CreateIndexes().SetMaxTime(time.Duration(ms) * time.Millisecond)
			}
		}
	}

	return idx, create
}

// looseCollation builds a typed collation from a loose document.
func looseCollation(v interface{}) *options.Collation {
	doc, ok := asDocument(v)
	if !ok {
		return nil
	}

	coll := &options.Collation{}
	if s, ok := asString(doc["locale"]); ok {
		coll.Locale = s
	}
	if b, ok := asBool(doc["caseLevel"]); ok {
		coll.CaseLevel = b
	}
	if s, ok := asString(doc["caseFirst"]); ok {
		coll.CaseFirst = s
	}
	if n, ok := asInt64(doc["strength"]); ok {
		coll.Strength = int(n)
	}
	if b, ok := asBool(doc["numericOrdering"]); ok {
		coll.NumericOrdering = b
	}
	if s, ok := asString(doc["alternate"]); ok {
		coll.Alternate = s
	}
	if s, ok := asString(doc["maxVariable"]); ok {
		coll.MaxVariable = s
	}
	if b, ok := asBool(doc["normalization"]); ok {
		coll.Normalization = b
	}
	if b, ok := asBool(doc["backwards"]); ok {
		coll.Backwards = b
	}
	return coll
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v interface{}) (bool, bool) {
	switch value := v.(type) {
	case bool:
		return value, true
	case int:
		return value != 0, true
	case int32:
		return value != 0, true
	case int64:
		return value != 0, true
	case float64:
		return value != 0, true
	}
	return false, false
}

func asInt32(v interface{}) (int32, bool) {
	n, ok := asInt64(v)
	return int32(n), ok
}

func asInt64(v interface{}) (int64, bool) {
	switch value := v.(type) {
	case int:
		return int64(value), true
	case int32:
		return int64(value), true
	case int64:
		return value, true
	case float64:
		return int64(value), true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case int:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case float32:
		return float64(value), true
	case float64:
		return value, true
	}
	return 0, false
}

func asDocument(v interface{}) (map[string]interface{}, bool) {
	switch value := v.(type) {
	case bson.M:
		return value, true
	case map[string]interface{}:
		return value, true
	case bson.D:
		doc := make(map[string]interface{}, len(value))
		for _, elem := range value {
			doc[elem.Key] = elem.Value
		}
		return doc, true
	}
	return nil, false
}
