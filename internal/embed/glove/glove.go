// Package glove is a placeholder provider. It returns seeded uniform random
// vectors per word instead of real co-occurrence-trained GloVe embeddings; a
// pretrained-vector lookup can replace it without changing the contract.
package glove

import (
	"math/rand"

	"github.com/kailas-cloud/embedlab/internal/domain"
)

// Placeholder returns one random vector of length dim per vocabulary word.
// Values are uniform in [0, 1); equal seeds give identical tables. The words
// are processed in vocabulary order, so determinism requires a sorted
// vocabulary (which corpus.Vocabulary guarantees).
func Placeholder(vocabulary []string, dim int, seed int64) domain.Table {
	rng := rand.New(rand.NewSource(seed))

	table := make(domain.Table, len(vocabulary))
	for _, word := range vocabulary {
		vec := make([]float32, dim)
		for d := range vec {
			vec[d] = rng.Float32()
		}
		table[word] = vec
	}
	return table
}
