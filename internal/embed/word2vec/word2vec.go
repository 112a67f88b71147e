// Package word2vec trains shallow predictive word embeddings (skip-gram with
// negative sampling) over a tokenized corpus.
package word2vec

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/kailas-cloud/embedlab/internal/domain"
)

// Config holds training hyperparameters.
type Config struct {
	Dimensions      int     // embedding vector length
	Window          int     // context window radius
	MinCount        int     // minimum word frequency to keep a word
	Epochs          int     // passes over the corpus
	NegativeSamples int     // negative samples per positive pair
	LearningRate    float64 // SGD step size
	Seed            int64   // PRNG seed; equal seeds give bit-identical tables
}

func (c Config) withDefaults() Config {
	if c.Dimensions <= 0 {
		c.Dimensions = 10
	}
	if c.Window <= 0 {
		c.Window = 5
	}
	if c.MinCount <= 0 {
		c.MinCount = 1
	}
	if c.Epochs <= 0 {
		c.Epochs = 50
	}
	if c.NegativeSamples <= 0 {
		c.NegativeSamples = 5
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.025
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return c
}

// Train fits embeddings over the tokenized sentences and returns one vector
// per surviving vocabulary word. Words below MinCount are dropped; if nothing
// survives, Train fails with domain.ErrEmptyCorpus.
func Train(sentences [][]string, cfg Config) (domain.Table, error) {
	cfg = cfg.withDefaults()

	counts := make(map[string]int)
	for _, sentence := range sentences {
		for _, w := range sentence {
			counts[w]++
		}
	}

	vocab := make([]string, 0, len(counts))
	for w, n := range counts {
		if n >= cfg.MinCount {
			vocab = append(vocab, w)
		}
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("no words with frequency >= %d: %w", cfg.MinCount, domain.ErrEmptyCorpus)
	}
	// Sorted vocabulary keeps word IDs, and therefore training, deterministic.
	sort.Strings(vocab)

	ids := make(map[string]int, len(vocab))
	for i, w := range vocab {
		ids[w] = i
	}

	// Sentences as ID sequences, dropped words removed.
	encoded := make([][]int, 0, len(sentences))
	for _, sentence := range sentences {
		row := make([]int, 0, len(sentence))
		for _, w := range sentence {
			if id, ok := ids[w]; ok {
				row = append(row, id)
			}
		}
		if len(row) > 0 {
			encoded = append(encoded, row)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	m := newModel(len(vocab), cfg.Dimensions, rng)
	sampler := newUnigramSampler(vocab, counts)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for _, sentence := range encoded {
			m.trainSentence(sentence, cfg, sampler, rng)
		}
	}

	table := make(domain.Table, len(vocab))
	for i, w := range vocab {
		vec := make([]float32, cfg.Dimensions)
		copy(vec, m.in[i])
		table[w] = vec
	}
	return table, nil
}

// model holds the input (word) and output (context) embedding matrices.
type model struct {
	in  [][]float32
	out [][]float32
	dim int
}

func newModel(vocabSize, dim int, rng *rand.Rand) *model {
	m := &model{
		in:  make([][]float32, vocabSize),
		out: make([][]float32, vocabSize),
		dim: dim,
	}
	for i := 0; i < vocabSize; i++ {
		m.in[i] = make([]float32, dim)
		m.out[i] = make([]float32, dim)
		for d := 0; d < dim; d++ {
			m.in[i][d] = float32((rng.Float64() - 0.5) / float64(dim))
		}
	}
	return m
}

func (m *model) trainSentence(sentence []int, cfg Config, sampler *unigramSampler, rng *rand.Rand) {
	for pos, center := range sentence {
		lo := pos - cfg.Window
		if lo < 0 {
			lo = 0
		}
		hi := pos + cfg.Window
		if hi >= len(sentence) {
			hi = len(sentence) - 1
		}

		for ctx := lo; ctx <= hi; ctx++ {
			if ctx == pos {
				continue
			}
			target := sentence[ctx]

			m.trainPair(center, target, 1, cfg.LearningRate)
			for n := 0; n < cfg.NegativeSamples; n++ {
				negative := sampler.sample(rng)
				if negative == target {
					continue
				}
				m.trainPair(center, negative, 0, cfg.LearningRate)
			}
		}
	}
}

// trainPair applies one SGD step for a (center, output) pair with the given
// label (1 = observed context, 0 = negative sample).
func (m *model) trainPair(center, output int, label float64, lr float64) {
	in := m.in[center]
	out := m.out[output]

	var z float64
	for d := 0; d < m.dim; d++ {
		z += float64(in[d]) * float64(out[d])
	}

	g := lr * (label - sigmoid(z))
	for d := 0; d < m.dim; d++ {
		inD := float64(in[d])
		outD := float64(out[d])
		in[d] = float32(inD + g*outD)
		out[d] = float32(outD + g*inD)
	}
}

// sigmoid with the argument clamped to keep exp finite.
func sigmoid(z float64) float64 {
	switch {
	case z > 6:
		return 1
	case z < -6:
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}

// unigramSampler draws negative samples proportionally to count^0.75, the
// standard smoothed unigram distribution.
type unigramSampler struct {
	cumulative []float64
	total      float64
}

func newUnigramSampler(vocab []string, counts map[string]int) *unigramSampler {
	s := &unigramSampler{cumulative: make([]float64, len(vocab))}
	for i, w := range vocab {
		s.total += math.Pow(float64(counts[w]), 0.75)
		s.cumulative[i] = s.total
	}
	return s
}

func (s *unigramSampler) sample(rng *rand.Rand) int {
	x := rng.Float64() * s.total
	return sort.SearchFloat64s(s.cumulative, x)
}
