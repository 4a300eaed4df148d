package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/tinct/pkg/ports"
)

// TemplateSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.TemplateSource.
// setupData holds the templates the source was seeded with.
func TemplateSourceContractTest(t *testing.T, source ports.TemplateSource, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Load (Success)
	t.Run("Load_Success", func(t *testing.T) {
		for name, expected := range setupData {
			content, err := source.Load(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading template %s: %v", name, err)
			}
			if content != expected {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expected)
			}
		}
	})

	// 2. Test Load (NotFound)
	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := source.Load(ctx, "non-existent-template")
		if !errors.Is(err, ports.ErrTemplateNotFound) {
			t.Errorf("expected ErrTemplateNotFound, got %v", err)
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		names, err := source.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing templates: %v", err)
		}

		if len(names) != len(setupData) {
			t.Errorf("expected %d templates, got %d (%v)", len(setupData), len(names), names)
		}
		if !sort.StringsAreSorted(names) {
			t.Errorf("expected sorted names, got %v", names)
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("template %s missing from list", name)
			}
		}
	})
}
