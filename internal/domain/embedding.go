package domain

import "context"

// Embedder is the shared sentence vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// TokenEmbedder produces one contextual vector per token of a sentence.
type TokenEmbedder interface {
	EmbedTokens(ctx context.Context, sentence string) (TokenEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// TokenEmbeddingResult carries per-token vectors for a single sentence.
// All vectors share the same dimensionality.
type TokenEmbeddingResult struct {
	Tokens  []string
	Vectors [][]float32
}

// Dimensions returns the per-token vector dimensionality, 0 when empty.
func (r TokenEmbeddingResult) Dimensions() int {
	if len(r.Vectors) == 0 {
		return 0
	}
	return len(r.Vectors[0])
}

// Table maps vocabulary words to embedding vectors. Produced once, read-only
// afterward.
type Table map[string][]float32
