package metadata

import (
	"fmt"
	"sync"
)

// Provider supplies document metadata to consumers such as the schema
// manager. Implementations must be safe for concurrent reads.
type Provider interface {
	// Get retrieves the metadata registered under the given document name.
	Get(name string) (*ClassMetadata, error)

	// All returns every registered document's metadata in registration order.
	All() []*ClassMetadata
}

// Registry is the standard Provider: an in-memory collection of document
// metadata keyed by document name, preserving registration order.
type Registry struct {
	classes map[string]*ClassMetadata
	order   []string
	mu      sync.RWMutex
}

// NewRegistry creates a new metadata registry
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*ClassMetadata),
	}
}

// Register validates and registers a document's metadata
func (r *Registry) Register(class *ClassMetadata) error {
	if err := class.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[class.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, class.Name)
	}

	r.classes[class.Name] = class
	r.order = append(r.order, class.Name)
	return nil
}

// Get retrieves the metadata registered under the given document name
func (r *Registry) Get(name string) (*ClassMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	class, exists := r.classes[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return class, nil
}

// All returns every registered document's metadata in registration order
func (r *Registry) All() []*ClassMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*ClassMetadata, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.classes[name])
	}
	return result
}

// List returns the names of all registered documents in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Exists checks if metadata is registered under the given document name
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.classes[name]
	return exists
}

// Count returns the number of registered documents
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.classes)
}

// Clear removes all registered metadata (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.classes = make(map[string]*ClassMetadata)
	r.order = nil
}
