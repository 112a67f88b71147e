package bert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/embedlab/internal/domain"
)

func TestEmbedTokens_PerTokenVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Inputs == "" {
			t.Error("empty inputs in request")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{
			Tokens:  []string{"[CLS]", "deep", "learning", "[SEP]"},
			Vectors: [][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}, {0.7, 0.8}},
		})
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL, Model: "bert-base-uncased"})

	result, err := emb.EmbedTokens(context.Background(), "deep learning")
	if err != nil {
		t.Fatalf("EmbedTokens failed: %v", err)
	}

	if len(result.Vectors) != 4 {
		t.Fatalf("expected 4 token vectors, got %d", len(result.Vectors))
	}
	if result.Dimensions() != 2 {
		t.Errorf("dimensions = %d, want 2", result.Dimensions())
	}
}

func TestEmbedTokens_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL})

	_, err := emb.EmbedTokens(context.Background(), "text")
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestEmbedTokens_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL})

	_, err := emb.EmbedTokens(context.Background(), "text")
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestEmbedTokens_InconsistentDims(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{
			Vectors: [][]float32{{0.1, 0.2}, {0.3}},
		})
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL})

	_, err := emb.EmbedTokens(context.Background(), "text")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestEmbedTokens_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL})

	_, err := emb.EmbedTokens(context.Background(), "text")
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	emb := NewEmbedder(&Config{BaseURL: server.URL})
	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check failed: %v", err)
	}
}
