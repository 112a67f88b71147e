// Package vindex drives an external vector engine as a harness index: it
// materializes the database as hash documents, creates an HNSW index over
// them, and answers k-NN queries through FT.SEARCH.
package vindex

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/db"
	"github.com/kailas-cloud/embedlab/internal/domain"
)

// fieldName is the hash field holding the binary vector blob.
const fieldName = "vector"

// hsetBatchSize bounds one pipelined HSET round-trip.
const hsetBatchSize = 500

// store is the consumer interface for the vector index repository (ISP).
type store interface {
	db.HashStore
	db.IndexManager
	db.Searcher
}

// Config names the index and tunes HNSW construction. Indexes are always
// built as HNSW over L2 distance; other engine algorithms and metrics are
// not exposed here.
type Config struct {
	IndexName   string
	KeyPrefix   string
	M           int
	EFConstruct int
}

// Repo is a build-once vector index over an external engine.
type Repo struct {
	store  store
	cfg    Config
	prefix string
	dim    int
	size   int
	logger *zap.Logger
}

// New creates an unbuilt index repository.
func New(s store, cfg Config, logger *zap.Logger) *Repo {
	return &Repo{
		store:  s,
		cfg:    cfg,
		prefix: cfg.KeyPrefix + "vec:",
		logger: logger,
	}
}

// Build drops any previous index, loads the vectors as hash documents, and
// creates the HNSW index over them. All vectors must share one dimensionality.
func (r *Repo) Build(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return domain.ErrEmptyDatabase
	}

	dim := len(vectors[0])
	for i := range vectors {
		if len(vectors[i]) != dim {
			return fmt.Errorf("vector %d has dim %d, index dim %d: %w",
				i, len(vectors[i]), dim, domain.ErrVectorDimMismatch)
		}
	}

	if err := r.store.DropIndex(ctx, r.cfg.IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop previous index: %w", err)
	}

	def := &db.IndexDefinition{
		Name:     r.cfg.IndexName,
		Prefixes: []string{r.prefix},
		Vector: db.VectorField{
			Name:        fieldName,
			Algo:        db.VectorHNSW,
			Dim:         dim,
			Distance:    db.DistanceL2,
			M:           r.cfg.M,
			EFConstruct: r.cfg.EFConstruct,
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	for offset := 0; offset < len(vectors); offset += hsetBatchSize {
		end := offset + hsetBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}

		items := make([]db.HashSetItem, 0, end-offset)
		for i := offset; i < end; i++ {
			items = append(items, db.HashSetItem{
				Key:    r.prefix + strconv.Itoa(i),
				Fields: map[string]string{fieldName: string(vectorToBytes(vectors[i]))},
			})
		}
		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("load vectors (offset %d): %w", offset, err)
		}
	}

	r.dim = dim
	r.size = len(vectors)

	r.logger.Debug("Vector index loaded",
		zap.String("index", r.cfg.IndexName),
		zap.Int("vectors", len(vectors)),
		zap.Int("dimensions", dim),
	)
	return nil
}

// Search returns the k nearest database vectors to query, ascending by
// distance as reported by the engine.
func (r *Repo) Search(ctx context.Context, query []float32, k int) ([]domain.Neighbor, error) {
	if r.size == 0 {
		return nil, domain.ErrEmptyDatabase
	}
	if len(query) != r.dim {
		return nil, fmt.Errorf("query dim %d, index dim %d: %w",
			len(query), r.dim, domain.ErrVectorDimMismatch)
	}
	if k <= 0 || k > r.size {
		return nil, fmt.Errorf("k=%d with %d database vectors: %w", k, r.size, domain.ErrInvalidTopK)
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.cfg.IndexName,
		Vector:    query,
		K:         k,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	neighbors := make([]domain.Neighbor, 0, len(result.Entries))
	for _, entry := range result.Entries {
		idx, err := r.keyToIndex(entry.Key)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, domain.Neighbor{Index: idx, Distance: entry.Score})
	}
	return neighbors, nil
}

func (r *Repo) keyToIndex(key string) (int, error) {
	suffix := strings.TrimPrefix(key, r.prefix)
	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("unexpected document key %q: %w", key, err)
	}
	return idx, nil
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
