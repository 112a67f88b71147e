// Package onehot produces sparse basis-vector embeddings over a sorted
// vocabulary.
package onehot

import "github.com/kailas-cloud/embedlab/internal/domain"

// Table assigns each word at position i of the sorted vocabulary the standard
// basis vector of length len(vocabulary) with a 1 at position i. Pure and
// deterministic; an empty vocabulary yields an empty table.
func Table(vocabulary []string) domain.Table {
	table := make(domain.Table, len(vocabulary))
	for i, word := range vocabulary {
		vec := make([]float32, len(vocabulary))
		vec[i] = 1
		table[word] = vec
	}
	return table
}
