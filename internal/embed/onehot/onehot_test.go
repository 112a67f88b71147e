package onehot

import (
	"testing"

	"github.com/kailas-cloud/embedlab/internal/domain/corpus"
)

func TestTable_Orthonormal(t *testing.T) {
	vocab := []string{"ai", "deep", "learning"}
	table := Table(vocab)

	dot := func(a, b []float32) float32 {
		var s float32
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}

	for _, w1 := range vocab {
		for _, w2 := range vocab {
			got := dot(table[w1], table[w2])
			want := float32(0)
			if w1 == w2 {
				want = 1
			}
			if got != want {
				t.Errorf("dot(%q, %q) = %f, want %f", w1, w2, got, want)
			}
		}
	}
}

func TestTable_ReferenceCorpus(t *testing.T) {
	c := corpus.Corpus{
		"I love natural language processing",
		"Deep learning is a key technology for AI",
	}
	vocab := c.Vocabulary()
	table := Table(vocab)

	vec, ok := table["learning"]
	if !ok {
		t.Fatal("missing entry for \"learning\"")
	}
	if len(vec) != len(vocab) {
		t.Fatalf("vector length %d, want %d", len(vec), len(vocab))
	}

	// Single 1 at the sorted position of "learning".
	pos := -1
	for i, w := range vocab {
		if w == "learning" {
			pos = i
		}
	}
	for i, v := range vec {
		switch {
		case i == pos && v != 1:
			t.Errorf("expected 1 at position %d, got %f", pos, v)
		case i != pos && v != 0:
			t.Errorf("expected 0 at position %d, got %f", i, v)
		}
	}
}

func TestTable_EmptyVocabulary(t *testing.T) {
	if table := Table(nil); len(table) != 0 {
		t.Errorf("expected empty table, got %d entries", len(table))
	}
}
