package schema

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/docket-db/docket/metadata"
)

// DocumentIndexes returns the full set of indexes the named document's
// collection should carry: its own declared indexes followed by those
// contributed by embedded documents, with every key translated to storage
// field names and reference keys rewritten for their storage strategy.
// The result is a copy; registered metadata is never modified.
func (m *Manager) DocumentIndexes(name string) ([]metadata.Index, error) {
	visited := make(map[string]bool)
	return m.documentIndexes(name, visited)
}

// documentIndexes is the recursive worker. The visited set spans a single
// resolution call and terminates embedding cycles: a document already on
// the resolution path contributes nothing a second time.
func (m *Manager) documentIndexes(name string, visited map[string]bool) ([]metadata.Index, error) {
	if visited[name] {
		return nil, nil
	}
	visited[name] = true

	class, err := m.provider.Get(name)
	if err != nil {
		return nil, err
	}

	indexes := prepareIndexes(class)

	// Two fields embedding the same target must both contribute its
	// indexes, so the recursion result is cached per target; the visited
	// set alone would make the second field come up empty.
	embedded := make(map[string][]metadata.Index)

	for _, fm := range class.FieldMappings {
		if fm.Embedded {
			for _, target := range embeddedTargets(fm) {
				contributed, ok := embedded[target]
				if !ok {
					contributed, err = m.documentIndexes(target, visited)
					if err != nil {
						return nil, err
					}
					embedded[target] = contributed
				}

				prefix := fm.StorageName() + "."
				for _, idx := range contributed {
					indexes = append(indexes, prefixIndexKeys(idx, prefix))
				}
			}
		}

		if fm.Reference && fm.TargetDocument != "" {
			// Rewrite keys addressing the reference field in every index
			// collected so far. The target document is not descended into.
			renamed := metadata.ReferenceFieldName(fm.StoreAs, fm.StorageName())
			for i := range indexes {
				indexes[i] = renameIndexKey(indexes[i], fm.StorageName(), renamed)
			}
		}
	}

	return indexes, nil
}

// prepareIndexes copies a document's declared indexes with their keys
// translated from application field names to storage field names.
func prepareIndexes(class *metadata.ClassMetadata) []metadata.Index {
	prepared := make([]metadata.Index, 0, len(class.Indexes))
	for _, idx := range class.Indexes {
		out := idx.Clone()
		for i, elem := range out.Keys {
			if fm, ok := class.Mapping(elem.Key); ok {
				out.Keys[i] = bson.E{Key: fm.StorageName(), Value: elem.Value}
			}
		}
		prepared = append(prepared, out)
	}
	return prepared
}

// embeddedTargets lists the document types an embedded field can hold,
// without duplicates. Discriminated targets are ordered by discriminator
// value to keep resolution deterministic.
func embeddedTargets(fm metadata.FieldMapping) []string {
	if fm.TargetDocument != "" {
		return []string{fm.TargetDocument}
	}
	if len(fm.DiscriminatorMap) == 0 {
		return nil
	}

	values := make([]string, 0, len(fm.DiscriminatorMap))
	for value := range fm.DiscriminatorMap {
		values = append(values, value)
	}
	sort.Strings(values)

	seen := make(map[string]bool, len(values))
	targets := make([]string, 0, len(values))
	for _, value := range values {
		target := fm.DiscriminatorMap[value]
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		targets = append(targets, target)
	}
	return targets
}

// prefixIndexKeys returns a copy of idx with every key prefixed by the
// embedding field's path, preserving key order.
func prefixIndexKeys(idx metadata.Index, prefix string) metadata.Index {
	out := idx.Clone()
	for i, elem := range out.Keys {
		out.Keys[i] = bson.E{Key: prefix + elem.Key, Value: elem.Value}
	}
	return out
}

// renameIndexKey returns idx with any key named from rewritten to to,
// copying only when a rewrite happens.
func renameIndexKey(idx metadata.Index, from, to string) metadata.Index {
	touched := false
	for _, elem := range idx.Keys {
		if elem.Key == from {
			touched = true
			break
		}
	}
	if !touched {
		return idx
	}

	out := idx.Clone()
	for i, elem := range out.Keys {
		if elem.Key == from {
			out.Keys[i] = bson.E{Key: to, Value: elem.Value}
		}
	}
	return out
}
