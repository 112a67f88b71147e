// Package chi exposes the embedding pipeline and the vector index over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/domain"
	"github.com/kailas-cloud/embedlab/internal/usecase/harness"
)

// ErrorCode identifies an error class in API responses.
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeVectorDimMismatch  ErrorCode = "vector_dim_mismatch"
	CodeInvalidTopK        ErrorCode = "invalid_top_k"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeAuthentication     ErrorCode = "authentication_failed"
	CodeProviderError      ErrorCode = "embedding_provider_error"
	CodeModelUnavailable   ErrorCode = "model_unavailable"
	CodeEmbeddingDisabled  ErrorCode = "embedding_disabled"
	CodeInternalError      ErrorCode = "internal_error"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves sentence embeddings and k-NN queries over a pre-built index.
type Server struct {
	embedder      domain.Embedder
	index         harness.VectorIndex
	health        map[string]domain.HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server. embedder may be nil when no hosted
// provider is configured; the embed route then answers 503.
func NewServer(
	embedder domain.Embedder,
	index harness.VectorIndex,
	health map[string]domain.HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		embedder: embedder,
		index:    index,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, CodeInvalidTopK),
		sentinelHandler(domain.ErrEmptyDatabase, http.StatusServiceUnavailable, CodeServiceUnavailable),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrAuthentication, http.StatusBadGateway, CodeAuthentication),
		sentinelHandler(domain.ErrNetwork, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusBadGateway, CodeModelUnavailable),
	}
	return s
}

// Routes mounts the API handlers on a router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/v1/embed", s.Embed)
	r.Post("/v1/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// EmbedRequest is the body of POST /v1/embed.
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse carries one sentence embedding.
type EmbedResponse struct {
	Embedding  []float32 `json:"embedding"`
	Dimensions int       `json:"dimensions"`
	Tokens     int       `json:"tokens,omitempty"`
}

// Embed handles POST /v1/embed.
func (s *Server) Embed(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil {
		writeError(w, http.StatusServiceUnavailable, CodeEmbeddingDisabled, "no hosted embedding provider configured")
		return
	}

	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "text is required")
		return
	}

	result, err := s.embedder.Embed(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EmbedResponse{
		Embedding:  result.Embedding,
		Dimensions: len(result.Embedding),
		Tokens:     result.TotalTokens,
	})
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
}

// SearchResponse carries the neighbors for one query vector.
type SearchResponse struct {
	Indices   []int     `json:"indices"`
	Distances []float64 `json:"distances"`
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Vector) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "vector is required")
		return
	}

	neighbors, err := s.index.Search(r.Context(), req.Vector, req.K)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := SearchResponse{
		Indices:   make([]int, len(neighbors)),
		Distances: make([]float64, len(neighbors)),
	}
	for i, nb := range neighbors {
		resp.Indices[i] = nb.Index
		resp.Distances[i] = nb.Distance
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthResponse reports overall and per-dependency status.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	checks := make(map[string]string, len(s.health))
	for name, hc := range s.health {
		if err := hc.HealthCheck(r.Context()); err != nil {
			checks[name] = "unhealthy"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			continue
		}
		checks[name] = "healthy"
	}

	writeJSON(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrVectorDimMismatch,
		domain.ErrInvalidTopK,
		domain.ErrEmptyDatabase,
		domain.ErrRateLimited,
		domain.ErrAuthentication,
		domain.ErrNetwork,
		domain.ErrEmbeddingProvider,
		domain.ErrModelUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
