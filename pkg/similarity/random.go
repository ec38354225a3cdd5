package similarity

import (
	"math/rand"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordvec/pkg/embedding"
)

// Sampling restricts itself to the most frequent ranks: low-frequency tails
// are dominated by numerals, punctuation-laden tokens and noise.
const (
	sampleCutoff     = 15000
	sampleBatchSize  = 10
	sampleMaxRetries = 5
	minCleanLen      = 3
	maxCleanLen      = 15
)

// fallbackWords backs RandomWord when no sampled rank yields a clean word.
// Common enough to exist in any general-purpose embedding vocabulary.
var fallbackWords = []string{
	"apple", "house", "water", "music", "happy",
	"friend", "garden", "window", "mountain", "river",
}

// SampleOptions tunes random word selection. The zero value uses the
// package defaults and the shared rand source.
type SampleOptions struct {
	BatchSize  int
	MaxRetries int
	Rand       *rand.Rand
}

// RandomWord picks a clean word from among the table's most frequent
// entries. It never fails: after bounded retries it degrades to a curated
// fallback word, preferring one present in the vocabulary.
func RandomWord(t embedding.Table) string {
	return SampleWord(t, SampleOptions{})
}

// SampleWord is RandomWord with explicit options, used by tests to pin the
// random source.
func SampleWord(t embedding.Table, opts SampleOptions) string {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = sampleBatchSize
	}
	retries := opts.MaxRetries
	if retries <= 0 {
		retries = sampleMaxRetries
	}
	intn := rand.Intn
	if opts.Rand != nil {
		intn = opts.Rand.Intn
	}

	cutoff := sampleCutoff
	if t.Len() < cutoff {
		cutoff = t.Len()
	}
	if cutoff > 0 {
		for attempt := 0; attempt < retries; attempt++ {
			for i := 0; i < batch; i++ {
				rank := intn(cutoff)
				if word, ok := cleanWordAt(t, rank); ok {
					return word
				}
			}
		}
	}

	log.Debugf("No clean word in %d rounds for model %s, using fallback", retries, t.ID())
	for _, w := range fallbackWords {
		if _, ok := t.Rank(w); ok {
			return w
		}
	}
	return fallbackWords[0]
}

// cleanWordAt fetches the word at rank and accepts it only if it is
// alphabetic, of moderate length, and the word->rank mapping agrees with
// the rank index. Any disagreement is a rejection, not an error.
func cleanWordAt(t embedding.Table, rank int) (string, bool) {
	word, ok := t.WordAt(rank)
	if !ok || !isCleanWord(word) {
		return "", false
	}
	r, ok := t.Rank(word)
	if !ok || r != rank {
		return "", false
	}
	return word, true
}

func isCleanWord(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < minCleanLen || n > maxCleanLen {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
