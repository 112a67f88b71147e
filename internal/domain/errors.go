package domain

import "errors"

var (
	// ErrEmptyCorpus signals a corpus with no usable tokens.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrModelUnavailable signals that a local inference model cannot be reached.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrAuthentication signals missing or rejected provider credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNetwork signals a transport-level failure talking to a provider.
	ErrNetwork = errors.New("network failure")
	// ErrRateLimited signals provider throttling.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProvider signals any other embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyDatabase signals an index build over zero vectors.
	ErrEmptyDatabase = errors.New("empty vector database")
	// ErrInvalidTopK signals a top-k outside (0, database size].
	ErrInvalidTopK = errors.New("invalid top-k")
)
