package vindex

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/db"
	"github.com/kailas-cloud/embedlab/internal/domain"
)

// mockEngine is an in-memory stand-in for the FT index: exact L2 scan over
// the documents loaded through HSetMulti.
type mockEngine struct {
	docs      map[string][]float32
	indexDefs map[string]*db.IndexDefinition
	hsetCalls int
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		docs:      make(map[string][]float32),
		indexDefs: make(map[string]*db.IndexDefinition),
	}
}

func (m *mockEngine) HSet(_ context.Context, key string, fields map[string]string) error {
	return m.HSetMulti(context.Background(), []db.HashSetItem{{Key: key, Fields: fields}})
}

func (m *mockEngine) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.hsetCalls++
	for _, item := range items {
		blob := []byte(item.Fields[fieldName])
		vec := make([]float32, len(blob)/4)
		for i := range vec {
			bits := uint32(blob[i*4]) | uint32(blob[i*4+1])<<8 | uint32(blob[i*4+2])<<16 | uint32(blob[i*4+3])<<24
			vec[i] = math.Float32frombits(bits)
		}
		m.docs[item.Key] = vec
	}
	return nil
}

func (m *mockEngine) Del(_ context.Context, key string) error {
	delete(m.docs, key)
	return nil
}

func (m *mockEngine) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, ok := m.indexDefs[def.Name]; ok {
		return db.ErrIndexExists
	}
	m.indexDefs[def.Name] = def
	return nil
}

func (m *mockEngine) DropIndex(_ context.Context, name string) error {
	if _, ok := m.indexDefs[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(m.indexDefs, name)
	return nil
}

func (m *mockEngine) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := m.indexDefs[name]
	return ok, nil
}

func (m *mockEngine) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if _, ok := m.indexDefs[q.IndexName]; !ok {
		return nil, db.ErrIndexNotFound
	}

	entries := make([]db.SearchEntry, 0, len(m.docs))
	for key, vec := range m.docs {
		var sum float64
		for i := range vec {
			d := float64(q.Vector[i]) - float64(vec[i])
			sum += d * d
		}
		entries = append(entries, db.SearchEntry{Key: key, Score: sum})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Score < entries[b].Score })
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func testRepo(engine *mockEngine) *Repo {
	return New(engine, Config{
		IndexName:   "test-harness",
		KeyPrefix:   "embedlab:",
		M:           32,
		EFConstruct: 400,
	}, zap.NewNop())
}

func TestBuildAndSearch(t *testing.T) {
	engine := newMockEngine()
	repo := testRepo(engine)

	vectors := [][]float32{
		{0, 0}, {1, 0}, {0, 1}, {5, 5},
	}
	if err := repo.Build(context.Background(), vectors); err != nil {
		t.Fatalf("build: %v", err)
	}

	neighbors, err := repo.Search(context.Background(), []float32{0.1, 0.1}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}
	if neighbors[0].Index != 0 {
		t.Errorf("nearest should be index 0, got %d", neighbors[0].Index)
	}
	if neighbors[1].Distance < neighbors[0].Distance {
		t.Errorf("distances not ascending: %v", neighbors)
	}
}

func TestBuild_RebuildDropsPreviousIndex(t *testing.T) {
	engine := newMockEngine()
	repo := testRepo(engine)

	if err := repo.Build(context.Background(), [][]float32{{1, 2}}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := repo.Build(context.Background(), [][]float32{{3, 4}, {5, 6}}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(engine.indexDefs) != 1 {
		t.Errorf("expected a single index definition after rebuild, got %d", len(engine.indexDefs))
	}
}

func TestBuild_Batching(t *testing.T) {
	engine := newMockEngine()
	repo := testRepo(engine)

	vectors := make([][]float32, hsetBatchSize+1)
	for i := range vectors {
		vectors[i] = []float32{float32(i)}
	}
	if err := repo.Build(context.Background(), vectors); err != nil {
		t.Fatalf("build: %v", err)
	}
	if engine.hsetCalls != 2 {
		t.Errorf("expected 2 pipelined batches, got %d", engine.hsetCalls)
	}
	if len(engine.docs) != len(vectors) {
		t.Errorf("expected %d documents, got %d", len(vectors), len(engine.docs))
	}
}

func TestBuild_Errors(t *testing.T) {
	repo := testRepo(newMockEngine())

	if err := repo.Build(context.Background(), nil); !errors.Is(err, domain.ErrEmptyDatabase) {
		t.Errorf("empty database: expected ErrEmptyDatabase, got %v", err)
	}
	err := repo.Build(context.Background(), [][]float32{{1, 2}, {3}})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("ragged vectors: expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearch_Errors(t *testing.T) {
	repo := testRepo(newMockEngine())

	if _, err := repo.Search(context.Background(), []float32{1}, 1); !errors.Is(err, domain.ErrEmptyDatabase) {
		t.Errorf("unbuilt index: expected ErrEmptyDatabase, got %v", err)
	}

	if err := repo.Build(context.Background(), [][]float32{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := repo.Search(context.Background(), []float32{1}, 1); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("dim mismatch: expected ErrVectorDimMismatch, got %v", err)
	}
	if _, err := repo.Search(context.Background(), []float32{1, 2}, 3); !errors.Is(err, domain.ErrInvalidTopK) {
		t.Errorf("k too large: expected ErrInvalidTopK, got %v", err)
	}
}

func TestKeyToIndex(t *testing.T) {
	repo := testRepo(newMockEngine())

	for i := 0; i < 3; i++ {
		key := repo.prefix + strconv.Itoa(i)
		got, err := repo.keyToIndex(key)
		if err != nil {
			t.Fatalf("keyToIndex(%q): %v", key, err)
		}
		if got != i {
			t.Errorf("keyToIndex(%q) = %d, want %d", key, got, i)
		}
	}

	if _, err := repo.keyToIndex("garbage"); err == nil {
		t.Error("expected error for malformed key")
	}
}
