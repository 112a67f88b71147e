// Package flat provides an exact in-process nearest-neighbor index over
// Euclidean distance. It backs the harness when no external vector engine is
// configured.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/embedlab/internal/domain"
)

// Index is a brute-force L2 index. Build loads all vectors once; the index is
// read-only afterward.
type Index struct {
	dim  int
	vecs [][]float32
}

// New creates an empty flat index.
func New() *Index {
	return &Index{}
}

// Build loads the database vectors. All vectors must share one dimensionality.
func (i *Index) Build(_ context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return domain.ErrEmptyDatabase
	}

	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("vector %d has dim %d, index dim %d: %w",
				j, len(vectors[j]), dim, domain.ErrVectorDimMismatch)
		}
	}

	i.dim = dim
	i.vecs = append([][]float32(nil), vectors...)
	return nil
}

// Search returns the k nearest database vectors to query by Euclidean
// distance, ascending.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]domain.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, domain.ErrEmptyDatabase
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("query dim %d, index dim %d: %w",
			len(query), i.dim, domain.ErrVectorDimMismatch)
	}
	if k <= 0 || k > len(i.vecs) {
		return nil, fmt.Errorf("k=%d with %d database vectors: %w",
			k, len(i.vecs), domain.ErrInvalidTopK)
	}

	neighbors := make([]domain.Neighbor, len(i.vecs))
	for j, vec := range i.vecs {
		neighbors[j] = domain.Neighbor{Index: j, Distance: l2(query, vec)}
	}

	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].Distance != neighbors[b].Distance {
			return neighbors[a].Distance < neighbors[b].Distance
		}
		return neighbors[a].Index < neighbors[b].Index
	})

	return neighbors[:k], nil
}

// l2 computes Euclidean distance with float64 accumulation.
func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
