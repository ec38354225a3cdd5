package similarity

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/bastiangx/wordvec/pkg/embedding"
)

func tableFromWords(t *testing.T, id string, words []string) embedding.Table {
	t.Helper()
	b := embedding.NewBuilder(id, 2, len(words))
	for i, w := range words {
		if err := b.Add(w, []float32{float32(i), 1}); err != nil {
			t.Fatal(err)
		}
	}
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestSampleWordAlwaysClean(t *testing.T) {
	// A mixed vocabulary: clean words interleaved with tokens the sampler
	// must skip over.
	words := []string{
		"apple", "x9", "banana", "it", "--", "cherry",
		"12345", "melon", "antidisestablishmentarianism", "grape",
	}
	table := tableFromWords(t, "mixed", words)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		w := SampleWord(table, SampleOptions{Rand: rng})
		if !isCleanWord(w) {
			t.Fatalf("draw %d returned dirty word %q", i, w)
		}
		if _, ok := table.Rank(w); !ok {
			t.Fatalf("draw %d returned %q which is not in the vocabulary", i, w)
		}
	}
}

func TestSampleWordFallback(t *testing.T) {
	// Nothing here passes the clean filter, so sampling must degrade to
	// the fallback list without erroring.
	table := tableFromWords(t, "dirty", []string{"a1", "b2", "c3", "??", "x"})
	rng := rand.New(rand.NewSource(7))

	w := SampleWord(table, SampleOptions{Rand: rng, MaxRetries: 2})
	if w != fallbackWords[0] {
		t.Errorf("fallback = %q, want %q (none of the fallbacks are in this vocabulary)", w, fallbackWords[0])
	}
}

func TestSampleWordFallbackPrefersVocabulary(t *testing.T) {
	// Dirty vocabulary that happens to contain a fallback word at a rank
	// beyond the sampling cutoff... not reproducible with a tiny table, so
	// instead check the preference directly: "water" is in the vocabulary
	// and must win over "apple" which is not.
	words := make([]string, 0, 40)
	for i := 0; i < 39; i++ {
		words = append(words, fmt.Sprintf("t%d", i)) // all dirty: too short or digits
	}
	words = append(words, "water")
	table := tableFromWords(t, "nearly-dirty", words)

	// water is clean and inside the cutoff so direct sampling may find it;
	// either path must return it.
	w := SampleWord(table, SampleOptions{Rand: rand.New(rand.NewSource(3)), MaxRetries: 1, BatchSize: 1})
	if w != "water" {
		t.Errorf("got %q, want water (only clean word and only in-vocab fallback)", w)
	}
}

func TestRandomWordNeverFails(t *testing.T) {
	table := tableFromWords(t, "tiny", []string{"zz"})
	if w := RandomWord(table); w == "" {
		t.Error("RandomWord returned empty string")
	}
}

func TestIsCleanWord(t *testing.T) {
	cases := []struct {
		word string
		want bool
	}{
		{"apple", true},
		{"cat", true},
		{"it", false},                           // too short
		{"antidisestablishmentarianism", false}, // too long
		{"word2vec", false},                     // digits
		{"user-name", false},                    // punctuation
		{"café", true},                          // accented letters are fine
		{"", false},
	}
	for _, c := range cases {
		if got := isCleanWord(c.word); got != c.want {
			t.Errorf("isCleanWord(%q) = %v, want %v", c.word, got, c.want)
		}
	}
}
