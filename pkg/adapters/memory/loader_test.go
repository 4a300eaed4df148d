package memory_test

import (
	"testing"

	"github.com/aretw0/tinct/pkg/adapters/memory"
	contract "github.com/aretw0/tinct/pkg/ports/tests"
)

func TestMemoryStore_SourceContract(t *testing.T) {
	data := map[string]string{
		"greeting": "Hello {{name}}",
		"colors":   "{{#palette}}{{.}}{{/palette}}",
	}

	store := memory.NewStore(data)

	contract.TemplateSourceContractTest(t, store, data)
}

func TestMemoryStore_CopiesSeed(t *testing.T) {
	data := map[string]string{"a": "1"}
	store := memory.NewStore(data)
	data["a"] = "changed"

	src, err := store.Load(t.Context(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if src != "1" {
		t.Errorf("store must not alias the seed map, got %q", src)
	}
}
