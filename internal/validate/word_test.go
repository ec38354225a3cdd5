package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestWord(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"simple", "hello", "hello", true},
		{"trimmed", "  hello  ", "hello", true},
		{"digits", "word2vec", "word2vec", true},
		{"hyphenated", "mother-in-law", "mother-in-law", true},
		{"apostrophe", "don't", "don't", true},
		{"dotted", "u.s.a", "u.s.a", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"too long", strings.Repeat("a", MaxWordLen+1), "", false},
		{"space inside", "two words", "", false},
		{"leading hyphen", "-word", "", false},
		{"trailing underscore", "word_", "", false},
		{"double hyphen", "a--b", "", false},
		{"double dot", "a..b", "", false},
		{"emoji", "hi😀", "", false},
		{"slash", "a/b", "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Word(c.input, "word")
			if c.ok {
				if err != nil {
					t.Fatalf("Word(%q) failed: %v", c.input, err)
				}
				if got != c.want {
					t.Errorf("Word(%q) = %q, want %q", c.input, got, c.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("Word(%q) accepted, want rejection", c.input)
			}
			var ve *Error
			if !errors.As(err, &ve) {
				t.Fatalf("error type = %T", err)
			}
			if ve.Field != "word" {
				t.Errorf("Field = %q", ve.Field)
			}
		})
	}
}

func TestBatchSize(t *testing.T) {
	if err := BatchSize(1); err != nil {
		t.Errorf("BatchSize(1): %v", err)
	}
	if err := BatchSize(MaxBatchSize); err != nil {
		t.Errorf("BatchSize(max): %v", err)
	}
	if err := BatchSize(0); err == nil {
		t.Error("BatchSize(0) accepted")
	}
	if err := BatchSize(MaxBatchSize + 1); err == nil {
		t.Error("BatchSize over limit accepted")
	}
}
