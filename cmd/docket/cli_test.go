package main

import (
	"strings"
	"testing"

	"github.com/docket-db/docket/metadata"
)

func testRegistry(t *testing.T, names ...string) *metadata.Registry {
	t.Helper()

	registry := metadata.NewRegistry()
	for _, name := range names {
		class := &metadata.ClassMetadata{Name: name, Collection: name + "s"}
		if err := registry.Register(class); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}
	return registry
}

func TestResolveDocumentKnown(t *testing.T) {
	registry := testRegistry(t, "user", "order")

	if err := resolveDocument(registry, "user"); err != nil {
		t.Errorf("Expected user to resolve, got %v", err)
	}
}

func TestResolveDocumentUnknownSuggests(t *testing.T) {
	registry := testRegistry(t, "user", "order")

	err := resolveDocument(registry, "uesr")
	if err == nil {
		t.Fatal("Expected an error for an unknown document type")
	}
	if !strings.Contains(err.Error(), `unknown document type "uesr"`) {
		t.Errorf("Expected the unknown name in the error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "did you mean user?") {
		t.Errorf("Expected a suggestion, got %q", err.Error())
	}
}

func TestResolveDocumentUnknownWithoutSuggestion(t *testing.T) {
	registry := testRegistry(t, "user", "order")

	err := resolveDocument(registry, "subscriptionRenewal")
	if err == nil {
		t.Fatal("Expected an error for an unknown document type")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("Expected no suggestion for a distant name, got %q", err.Error())
	}
}
