package catalog

import (
	"sort"
	"testing"
)

func TestBuiltinCatalog(t *testing.T) {
	c := New()

	if c.Len() != 10 {
		t.Fatalf("expected 10 builtin models, got %d", c.Len())
	}
	if c.Default() != DefaultModelID {
		t.Fatalf("default = %q, want %q", c.Default(), DefaultModelID)
	}
	if !c.Has(DefaultModelID) {
		t.Fatalf("catalog misses its own default %q", DefaultModelID)
	}

	m, ok := c.Get("glove-twitter-25")
	if !ok {
		t.Fatal("glove-twitter-25 missing")
	}
	if m.Dimension != 25 {
		t.Errorf("glove-twitter-25 dimension = %d, want 25", m.Dimension)
	}

	if c.Has("no-such-model") {
		t.Error("Has accepted an unknown identifier")
	}
}

func TestIDsSorted(t *testing.T) {
	c := New()
	ids := c.IDs()
	if !sort.StringsAreSorted(ids) {
		t.Errorf("IDs not sorted: %v", ids)
	}
	list := c.List()
	for i, m := range list {
		if m.ID != ids[i] {
			t.Errorf("List order diverges from IDs at %d: %q vs %q", i, m.ID, ids[i])
		}
	}
}

func TestFromEntries(t *testing.T) {
	c := FromEntries("tiny", []Metadata{
		{ID: "tiny", Description: "test vectors", Dimension: 2},
		{ID: "other", Dimension: 3},
	})
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Default() != "tiny" {
		t.Errorf("Default = %q, want tiny", c.Default())
	}
	if !c.Has("other") {
		t.Error("missing entry other")
	}
}
