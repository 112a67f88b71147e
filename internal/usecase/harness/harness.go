// Package harness generates a synthetic vector database and query set,
// builds a nearest-neighbor index through a pluggable driver, and runs a
// batch of k-NN queries.
package harness

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/domain"
	"github.com/kailas-cloud/embedlab/internal/metrics"
)

// VectorIndex is the driver port: exact in-process scan or an external
// vector engine, both behind the same build-once-then-search contract.
type VectorIndex interface {
	Build(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]domain.Neighbor, error)
}

// Config sizes a single harness run.
type Config struct {
	Driver       string // metric label only
	DatabaseSize int
	QueryCount   int
	Dimensions   int
	TopK         int
	Seed         int64
}

// Result holds the neighbor matrices for a full query batch: Indices and
// Distances both have shape (QueryCount, TopK), each row sorted ascending
// by distance.
type Result struct {
	Indices   [][]int
	Distances [][]float64
}

// Harness owns the generated vectors and the index for one run.
type Harness struct {
	cfg      Config
	index    VectorIndex
	database [][]float32
	queries  [][]float32
	logger   *zap.Logger
}

// New validates the configuration, generates the database and query set from
// the seed, and returns a harness ready to Run. The same seed always yields
// the same vectors.
func New(cfg Config, index VectorIndex, logger *zap.Logger) (*Harness, error) {
	if cfg.DatabaseSize <= 0 {
		return nil, fmt.Errorf("database_size=%d: %w", cfg.DatabaseSize, domain.ErrEmptyDatabase)
	}
	if cfg.TopK <= 0 || cfg.TopK > cfg.DatabaseSize {
		return nil, fmt.Errorf("top_k=%d with database_size=%d: %w",
			cfg.TopK, cfg.DatabaseSize, domain.ErrInvalidTopK)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", cfg.Dimensions)
	}
	if cfg.QueryCount <= 0 {
		return nil, fmt.Errorf("query_count must be positive, got %d", cfg.QueryCount)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	return &Harness{
		cfg:      cfg,
		index:    index,
		database: generateVectors(rng, cfg.DatabaseSize, cfg.Dimensions),
		queries:  generateVectors(rng, cfg.QueryCount, cfg.Dimensions),
		logger:   logger,
	}, nil
}

// Run builds the index over the database and searches every query. A failed
// build or search aborts the run; partial matrices are not meaningful.
func (h *Harness) Run(ctx context.Context) (Result, error) {
	buildStart := time.Now()
	if err := h.index.Build(ctx, h.database); err != nil {
		return Result{}, fmt.Errorf("build index: %w", err)
	}
	buildDuration := time.Since(buildStart)
	metrics.HarnessBuildDuration.WithLabelValues(h.cfg.Driver).Observe(buildDuration.Seconds())

	h.logger.Info("Vector index built",
		zap.String("driver", h.cfg.Driver),
		zap.Int("database_size", h.cfg.DatabaseSize),
		zap.Int("dimensions", h.cfg.Dimensions),
		zap.Duration("duration", buildDuration),
	)

	result := Result{
		Indices:   make([][]int, len(h.queries)),
		Distances: make([][]float64, len(h.queries)),
	}

	for q, query := range h.queries {
		searchStart := time.Now()
		neighbors, err := h.index.Search(ctx, query, h.cfg.TopK)
		if err != nil {
			return Result{}, fmt.Errorf("search query %d: %w", q, err)
		}
		metrics.HarnessSearchDuration.WithLabelValues(h.cfg.Driver).Observe(time.Since(searchStart).Seconds())

		result.Indices[q] = make([]int, len(neighbors))
		result.Distances[q] = make([]float64, len(neighbors))
		for n, nb := range neighbors {
			result.Indices[q][n] = nb.Index
			result.Distances[q][n] = nb.Distance
		}
	}

	return result, nil
}

// Print writes the neighbor index and distance matrices, one query per row.
func (r Result) Print(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "neighbor indices:"); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	for _, row := range r.Indices {
		if _, err := fmt.Fprintf(w, "  %v\n", row); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w, "neighbor distances:"); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	for _, row := range r.Distances {
		if _, err := fmt.Fprint(w, " "); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		for _, d := range row {
			if _, err := fmt.Fprintf(w, " %.4f", d); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

// Database exposes the generated database vectors (read-only by convention).
func (h *Harness) Database() [][]float32 { return h.database }

// Queries exposes the generated query vectors.
func (h *Harness) Queries() [][]float32 { return h.queries }

func generateVectors(rng *rand.Rand, n, dim int) [][]float32 {
	vecs := make([][]float32, n)
	for i := range vecs {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = rng.Float32()
		}
		vecs[i] = vec
	}
	return vecs
}
