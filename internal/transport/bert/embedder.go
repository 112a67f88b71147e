// Package bert adapts a local contextual-embedding inference server to the
// domain TokenEmbedder contract. The server speaks a minimal JSON protocol:
// POST /embed with the sentence, per-token vectors back.
package bert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/domain"
)

// Embedder calls a local inference server for per-token contextual vectors.
type Embedder struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds the inference server settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEmbedder creates a contextual embedding adapter.
func NewEmbedder(cfg *Config) *Embedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type embedRequest struct {
	Inputs string `json:"inputs"`
	Model  string `json:"model,omitempty"`
}

type embedResponse struct {
	Tokens  []string    `json:"tokens"`
	Vectors [][]float32 `json:"vectors"`
}

// EmbedTokens implements domain.TokenEmbedder. An unreachable or failing
// server surfaces as domain.ErrModelUnavailable so callers can skip this
// method without aborting the others.
func (e *Embedder) EmbedTokens(ctx context.Context, sentence string) (domain.TokenEmbeddingResult, error) {
	body, err := json.Marshal(embedRequest{Inputs: sentence, Model: e.model})
	if err != nil {
		return domain.TokenEmbeddingResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return domain.TokenEmbeddingResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.TokenEmbeddingResult{}, fmt.Errorf("inference server unreachable: %v: %w",
			err, domain.ErrModelUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.TokenEmbeddingResult{}, fmt.Errorf("inference server status %d: %w",
			resp.StatusCode, domain.ErrModelUnavailable)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.TokenEmbeddingResult{}, fmt.Errorf("decode response: %v: %w",
			err, domain.ErrModelUnavailable)
	}

	if len(parsed.Vectors) == 0 {
		return domain.TokenEmbeddingResult{}, fmt.Errorf("empty token vectors: %w", domain.ErrModelUnavailable)
	}
	dim := len(parsed.Vectors[0])
	for i, vec := range parsed.Vectors {
		if len(vec) != dim {
			return domain.TokenEmbeddingResult{}, fmt.Errorf(
				"token %d has dim %d, expected %d: %w", i, len(vec), dim, domain.ErrVectorDimMismatch)
		}
	}

	e.logger.Debug("Contextual embedding completed",
		zap.String("model", e.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("tokens", len(parsed.Vectors)),
		zap.Int("dimensions", dim),
	)

	return domain.TokenEmbeddingResult{Tokens: parsed.Tokens, Vectors: parsed.Vectors}, nil
}

// HealthCheck probes the inference server root endpoint.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference server unreachable: %v: %w", err, domain.ErrModelUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference server status %d: %w", resp.StatusCode, domain.ErrModelUnavailable)
	}
	return nil
}
