// Package corpus holds the input sentence collection and its derived
// vocabulary.
package corpus

import (
	"sort"
	"strings"
)

// Corpus is an ordered, immutable sequence of sentence strings.
type Corpus []string

// Tokenize splits every sentence into lowercase whitespace-separated tokens.
// No punctuation stripping or stemming is applied; tokenization is
// deterministic for a fixed corpus.
func (c Corpus) Tokenize() [][]string {
	tokenized := make([][]string, len(c))
	for i, sentence := range c {
		tokenized[i] = strings.Fields(strings.ToLower(sentence))
	}
	return tokenized
}

// Vocabulary returns the distinct tokens across all sentences in ascending
// lexicographic order. An empty corpus yields an empty vocabulary.
func (c Corpus) Vocabulary() []string {
	return VocabularyOf(c.Tokenize())
}

// VocabularyOf derives the sorted distinct-token vocabulary from already
// tokenized sentences.
func VocabularyOf(tokenized [][]string) []string {
	seen := make(map[string]struct{})
	for _, sentence := range tokenized {
		for _, tok := range sentence {
			seen[tok] = struct{}{}
		}
	}

	vocab := make([]string, 0, len(seen))
	for tok := range seen {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	return vocab
}
