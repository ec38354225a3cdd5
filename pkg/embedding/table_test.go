package embedding

import (
	"errors"
	"math"
	"testing"
)

func buildTestTable(t *testing.T) Table {
	t.Helper()
	b := NewBuilder("test-model", 2, 4)
	words := []struct {
		w   string
		vec []float32
	}{
		{"the", []float32{1, 0}},
		{"then", []float32{0, 1}},
		{"there", []float32{3, 4}},
		{"cat", []float32{0.5, 0.5}},
	}
	for _, e := range words {
		if err := b.Add(e.w, e.vec); err != nil {
			t.Fatalf("Add(%q): %v", e.w, err)
		}
	}
	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return table
}

func TestTableAccessors(t *testing.T) {
	table := buildTestTable(t)

	if table.ID() != "test-model" {
		t.Errorf("ID = %q", table.ID())
	}
	if table.Len() != 4 || table.Dim() != 2 {
		t.Errorf("Len/Dim = %d/%d, want 4/2", table.Len(), table.Dim())
	}

	// Ranks follow insertion order.
	if r, ok := table.Rank("the"); !ok || r != 0 {
		t.Errorf("Rank(the) = %d,%v", r, ok)
	}
	if r, ok := table.Rank("cat"); !ok || r != 3 {
		t.Errorf("Rank(cat) = %d,%v", r, ok)
	}
	if _, ok := table.Rank("dog"); ok {
		t.Error("Rank accepted unknown word")
	}

	if w, ok := table.WordAt(2); !ok || w != "there" {
		t.Errorf("WordAt(2) = %q,%v", w, ok)
	}
	if _, ok := table.WordAt(99); ok {
		t.Error("WordAt accepted out-of-range rank")
	}
	if _, ok := table.WordAt(-1); ok {
		t.Error("WordAt accepted negative rank")
	}

	vec, ok := table.Vector("there")
	if !ok || len(vec) != 2 || vec[0] != 3 || vec[1] != 4 {
		t.Errorf("Vector(there) = %v,%v", vec, ok)
	}
	if table.VectorAt(99) != nil {
		t.Error("VectorAt accepted out-of-range rank")
	}
}

func TestTableNorms(t *testing.T) {
	table := buildTestTable(t)

	// (3,4) has norm 5 exactly.
	r, _ := table.Rank("there")
	if n := table.NormAt(r); math.Abs(float64(n)-5) > 1e-6 {
		t.Errorf("NormAt(there) = %v, want 5", n)
	}
	if n := table.NormAt(-1); n != 0 {
		t.Errorf("NormAt(-1) = %v, want 0", n)
	}
}

func TestPrefixSearch(t *testing.T) {
	table := buildTestTable(t)

	hits := table.PrefixSearch("the", 10)
	want := []string{"the", "then", "there"}
	if len(hits) != len(want) {
		t.Fatalf("PrefixSearch(the) returned %d hits, want %d", len(hits), len(want))
	}
	for i, h := range hits {
		if h.Word != want[i] {
			t.Errorf("hit %d = %q, want %q (rank order)", i, h.Word, want[i])
		}
		if h.Rank != i {
			t.Errorf("hit %d rank = %d, want %d", i, h.Rank, i)
		}
	}

	if hits := table.PrefixSearch("the", 2); len(hits) != 2 {
		t.Errorf("limit ignored: got %d hits", len(hits))
	}
	if hits := table.PrefixSearch("zz", 10); len(hits) != 0 {
		t.Errorf("no-match prefix returned %d hits", len(hits))
	}
	if hits := table.PrefixSearch("", 10); hits != nil {
		t.Errorf("empty prefix returned %v", hits)
	}
	if hits := table.PrefixSearch("the", 0); hits != nil {
		t.Errorf("zero limit returned %v", hits)
	}
}

func TestBuilderRejections(t *testing.T) {
	b := NewBuilder("m", 2, 0)
	if err := b.Add("ok", []float32{1, 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var dimErr *DimensionError
	if err := b.Add("bad", []float32{1}); !errors.As(err, &dimErr) {
		t.Errorf("short vector: got %v, want DimensionError", err)
	}

	var dupErr *DuplicateWordError
	if err := b.Add("ok", []float32{3, 4}); !errors.As(err, &dupErr) {
		t.Errorf("duplicate: got %v, want DuplicateWordError", err)
	}

	if b.Len() != 1 {
		t.Errorf("rejected adds mutated builder: Len = %d", b.Len())
	}
}

func TestBuildEmpty(t *testing.T) {
	var parseErr *ParseError
	_, err := NewBuilder("m", 2, 0).Build()
	if !errors.As(err, &parseErr) {
		t.Errorf("empty build: got %v, want ParseError", err)
	}
}
