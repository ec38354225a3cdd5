/*
Package catalog is the static registry of loadable embedding models.

The catalog is the single authority on which model identifiers the service
accepts. It holds descriptive metadata only; actual vector tables are
produced by the embedding loader and owned by the model cache.
*/
package catalog

import (
	"sort"
)

// Metadata describes one pre-trained embedding model.
// Sizes and vocabulary counts are approximate and informational.
type Metadata struct {
	ID          string
	Description string
	SizeMB      int
	VocabSize   int
	Dimension   int
}

// Catalog maps model identifiers to their metadata.
// Populated once at construction and never mutated afterwards.
type Catalog struct {
	models map[string]Metadata
	def    string
}

// DefaultModelID is the model used when a request omits the model field.
const DefaultModelID = "glove-wiki-gigaword-100"

// New returns the builtin catalog of gensim pre-trained models.
func New() *Catalog {
	entries := []Metadata{
		{ID: "glove-wiki-gigaword-50", Description: "GloVe 50D vectors trained on Wikipedia+Gigaword", SizeMB: 69, VocabSize: 400000, Dimension: 50},
		{ID: "glove-wiki-gigaword-100", Description: "GloVe 100D vectors trained on Wikipedia+Gigaword", SizeMB: 128, VocabSize: 400000, Dimension: 100},
		{ID: "glove-wiki-gigaword-200", Description: "GloVe 200D vectors trained on Wikipedia+Gigaword", SizeMB: 252, VocabSize: 400000, Dimension: 200},
		{ID: "glove-wiki-gigaword-300", Description: "GloVe 300D vectors trained on Wikipedia+Gigaword", SizeMB: 376, VocabSize: 400000, Dimension: 300},
		{ID: "glove-twitter-25", Description: "GloVe 25D vectors trained on Twitter (2B tweets)", SizeMB: 104, VocabSize: 1193514, Dimension: 25},
		{ID: "glove-twitter-50", Description: "GloVe 50D vectors trained on Twitter (2B tweets)", SizeMB: 205, VocabSize: 1193514, Dimension: 50},
		{ID: "glove-twitter-100", Description: "GloVe 100D vectors trained on Twitter (2B tweets)", SizeMB: 405, VocabSize: 1193514, Dimension: 100},
		{ID: "glove-twitter-200", Description: "GloVe 200D vectors trained on Twitter (2B tweets)", SizeMB: 805, VocabSize: 1193514, Dimension: 200},
		{ID: "word2vec-google-news-300", Description: "Word2Vec 300D vectors trained on Google News (3B words)", SizeMB: 1662, VocabSize: 3000000, Dimension: 300},
		{ID: "fasttext-wiki-news-subwords-300", Description: "FastText 300D vectors with subword info (2M vocab)", SizeMB: 958, VocabSize: 999999, Dimension: 300},
	}
	return FromEntries(DefaultModelID, entries)
}

// FromEntries builds a catalog from an explicit entry list.
// Useful for tests and for deployments serving custom embedding sets.
func FromEntries(defaultID string, entries []Metadata) *Catalog {
	models := make(map[string]Metadata, len(entries))
	for _, m := range entries {
		models[m.ID] = m
	}
	return &Catalog{models: models, def: defaultID}
}

// Default returns the default model identifier.
func (c *Catalog) Default() string {
	return c.def
}

// Has reports whether id names a known model.
func (c *Catalog) Has(id string) bool {
	_, ok := c.models[id]
	return ok
}

// Get returns the metadata for id.
func (c *Catalog) Get(id string) (Metadata, bool) {
	m, ok := c.models[id]
	return m, ok
}

// Len returns the number of registered models.
func (c *Catalog) Len() int {
	return len(c.models)
}

// IDs returns all model identifiers sorted alphabetically.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns metadata for every model, sorted by identifier.
func (c *Catalog) List() []Metadata {
	out := make([]Metadata, 0, len(c.models))
	for _, id := range c.IDs() {
		out = append(out, c.models[id])
	}
	return out
}
