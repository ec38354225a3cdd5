/*
Package embedding provides immutable in-memory vector tables and the loaders
that construct them from embedding files.

A Table maps words to dense float32 vectors and to frequency ranks
(rank 0 is the most frequent word). Tables are frozen at build time: every
accessor is safe for concurrent use without locking, and vectors handed out
are read-only borrows into the table's backing array.
*/
package embedding

import (
	"math"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// RankedWord pairs a vocabulary word with its frequency rank.
type RankedWord struct {
	Word string
	Rank int
}

// Table is the fixed contract for a loaded embedding model.
// Implementations must be immutable after construction.
type Table interface {
	// ID returns the model identifier this table was loaded for.
	ID() string
	// Len returns the vocabulary size.
	Len() int
	// Dim returns the vector dimensionality, constant across all entries.
	Dim() int
	// Rank returns the frequency rank of word.
	Rank(word string) (int, bool)
	// WordAt returns the word at the given rank.
	WordAt(rank int) (string, bool)
	// Vector returns the vector for word. The slice is a read-only borrow.
	Vector(word string) ([]float32, bool)
	// VectorAt returns the vector at the given rank, or nil if out of range.
	VectorAt(rank int) []float32
	// NormAt returns the precomputed L2 norm of the vector at rank.
	NormAt(rank int) float32
	// PrefixSearch returns up to limit vocabulary words starting with
	// prefix, ordered by ascending rank.
	PrefixSearch(prefix string, limit int) []RankedWord
}

// memTable is the single Table implementation. Vectors are stored in one
// flat slice to keep the whole model in two allocations.
type memTable struct {
	id    string
	dim   int
	words []string
	index map[string]int
	vecs  []float32
	norms []float32
	trie  *patricia.Trie
}

func (t *memTable) ID() string { return t.id }
func (t *memTable) Len() int   { return len(t.words) }
func (t *memTable) Dim() int   { return t.dim }

func (t *memTable) Rank(word string) (int, bool) {
	r, ok := t.index[word]
	return r, ok
}

func (t *memTable) WordAt(rank int) (string, bool) {
	if rank < 0 || rank >= len(t.words) {
		return "", false
	}
	return t.words[rank], true
}

func (t *memTable) Vector(word string) ([]float32, bool) {
	r, ok := t.index[word]
	if !ok {
		return nil, false
	}
	return t.VectorAt(r), true
}

func (t *memTable) VectorAt(rank int) []float32 {
	if rank < 0 || rank >= len(t.words) {
		return nil
	}
	off := rank * t.dim
	return t.vecs[off : off+t.dim : off+t.dim]
}

func (t *memTable) NormAt(rank int) float32 {
	if rank < 0 || rank >= len(t.norms) {
		return 0
	}
	return t.norms[rank]
}

func (t *memTable) PrefixSearch(prefix string, limit int) []RankedWord {
	if limit <= 0 || prefix == "" {
		return nil
	}
	var hits []RankedWord
	_ = t.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		hits = append(hits, RankedWord{Word: string(p), Rank: item.(int)})
		return nil
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].Rank < hits[j].Rank })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Builder accumulates words in rank order and freezes them into a Table.
// Not safe for concurrent use; intended for a single loading goroutine.
type Builder struct {
	id    string
	dim   int
	words []string
	index map[string]int
	vecs  []float32
}

// NewBuilder creates a builder for a table with the given dimensionality.
// capacity is a vocabulary size hint and may be zero.
func NewBuilder(id string, dim, capacity int) *Builder {
	if capacity < 0 {
		capacity = 0
	}
	return &Builder{
		id:    id,
		dim:   dim,
		words: make([]string, 0, capacity),
		index: make(map[string]int, capacity),
		vecs:  make([]float32, 0, capacity*dim),
	}
}

// Len returns the number of words added so far.
func (b *Builder) Len() int { return len(b.words) }

// Add appends word with its vector at the next rank.
// Duplicate words and mismatched dimensions are rejected.
func (b *Builder) Add(word string, vec []float32) error {
	if len(vec) != b.dim {
		return &DimensionError{Expected: b.dim, Actual: len(vec), Word: word}
	}
	if _, dup := b.index[word]; dup {
		return &DuplicateWordError{Word: word}
	}
	b.index[word] = len(b.words)
	b.words = append(b.words, word)
	b.vecs = append(b.vecs, vec...)
	return nil
}

// Build freezes the builder into an immutable Table, precomputing L2 norms
// and the vocabulary prefix trie. The builder must not be reused afterwards.
func (b *Builder) Build() (Table, error) {
	if len(b.words) == 0 {
		return nil, &ParseError{File: b.id, Reason: "empty vocabulary"}
	}
	t := &memTable{
		id:    b.id,
		dim:   b.dim,
		words: b.words,
		index: b.index,
		vecs:  b.vecs,
		norms: make([]float32, len(b.words)),
		trie:  patricia.NewTrie(),
	}
	for r, w := range t.words {
		var sum float64
		for _, x := range t.VectorAt(r) {
			sum += float64(x) * float64(x)
		}
		t.norms[r] = float32(math.Sqrt(sum))
		t.trie.Insert(patricia.Prefix(w), r)
	}
	return t, nil
}
