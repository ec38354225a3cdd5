/*
Package similarity implements the query operations over a loaded embedding
table: membership, cosine similarity, batch comparison and random word
sampling.

All functions are pure with respect to the table: they borrow it read-only
for the duration of one call and never retain it.
*/
package similarity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/wordvec/pkg/embedding"
)

// batchConcurrency bounds parallel pair evaluation in BatchSimilarity.
const batchConcurrency = 8

// Info summarises a table for the info endpoint.
type Info struct {
	VocabularySize int `json:"vocabulary_size"`
	VectorSize     int `json:"vector_size"`
}

// Pair is one word pair to compare.
type Pair struct {
	Word1 string `json:"word1"`
	Word2 string `json:"word2"`
}

// PairResult is a successful comparison.
type PairResult struct {
	Word1      string  `json:"word1"`
	Word2      string  `json:"word2"`
	Similarity float64 `json:"similarity"`
}

// PairFailure records why one pair in a batch could not be compared.
type PairFailure struct {
	Index int    `json:"index"`
	Word1 string `json:"word1"`
	Word2 string `json:"word2"`
	Error string `json:"error"`
}

// BatchResult aggregates a batch comparison. Pairs fail independently:
// a missing word in one pair never aborts the others.
type BatchResult struct {
	Results   []PairResult  `json:"results"`
	Failures  []PairFailure `json:"failures,omitempty"`
	Total     int           `json:"total_comparisons"`
	Succeeded int           `json:"successful_comparisons"`
	Failed    int           `json:"failed_comparisons"`
}

// Exists reports whether word is in the table's vocabulary.
func Exists(t embedding.Table, word string) bool {
	_, ok := t.Rank(word)
	return ok
}

// GetInfo returns the table's vocabulary size and dimensionality.
func GetInfo(t embedding.Table) Info {
	return Info{VocabularySize: t.Len(), VectorSize: t.Dim()}
}

// Similarity returns the cosine similarity of two words in [-1, 1].
// Missing words fail with *WordNotFoundError naming every absent word.
func Similarity(t embedding.Table, word1, word2 string) (float64, error) {
	r1, ok1 := t.Rank(word1)
	r2, ok2 := t.Rank(word2)
	if !ok1 || !ok2 {
		e := &WordNotFoundError{Model: t.ID()}
		if !ok1 {
			e.Words = append(e.Words, word1)
		}
		if !ok2 {
			e.Words = append(e.Words, word2)
		}
		return 0, e
	}
	return cosineAt(t, r1, r2), nil
}

// cosineAt computes cosine similarity between the vectors at two ranks
// using the table's precomputed norms.
func cosineAt(t embedding.Table, r1, r2 int) float64 {
	n1, n2 := t.NormAt(r1), t.NormAt(r2)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	a, b := t.VectorAt(r1), t.VectorAt(r2)
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	sim := dot / (float64(n1) * float64(n2))
	// Accumulated float error can push |sim| past 1.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim
}

// BatchSimilarity compares every pair, isolating per-pair failures.
// Output order matches input order regardless of evaluation order.
func BatchSimilarity(ctx context.Context, t embedding.Table, pairs []Pair) BatchResult {
	type slot struct {
		sim float64
		err error
	}
	slots := make([]slot, len(pairs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			slots[i].sim, slots[i].err = Similarity(t, p.Word1, p.Word2)
			return nil
		})
	}
	// Tasks never return errors; Wait is only a join point.
	_ = g.Wait()

	res := BatchResult{Total: len(pairs)}
	for i, p := range pairs {
		if err := slots[i].err; err != nil {
			res.Failures = append(res.Failures, PairFailure{
				Index: i,
				Word1: p.Word1,
				Word2: p.Word2,
				Error: err.Error(),
			})
			continue
		}
		res.Results = append(res.Results, PairResult{
			Word1:      p.Word1,
			Word2:      p.Word2,
			Similarity: slots[i].sim,
		})
	}
	res.Succeeded = len(res.Results)
	res.Failed = len(res.Failures)
	return res
}

// WordNotFoundError names the word(s) absent from a table's vocabulary.
type WordNotFoundError struct {
	Words []string
	Model string
}

func (e *WordNotFoundError) Error() string {
	if len(e.Words) == 1 {
		return fmt.Sprintf("word %q not found in vocabulary of model %q", e.Words[0], e.Model)
	}
	return fmt.Sprintf("words %q not found in vocabulary of model %q", e.Words, e.Model)
}
