// Command embedlabd serves the hosted embedding pipeline and the vector
// index harness over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/config"
	"github.com/kailas-cloud/embedlab/internal/db"
	dbRedis "github.com/kailas-cloud/embedlab/internal/db/redis"
	"github.com/kailas-cloud/embedlab/internal/domain"
	"github.com/kailas-cloud/embedlab/internal/index/flat"
	logpkg "github.com/kailas-cloud/embedlab/internal/logger"
	"github.com/kailas-cloud/embedlab/internal/metrics"
	"github.com/kailas-cloud/embedlab/internal/repository/embcache"
	"github.com/kailas-cloud/embedlab/internal/repository/vindex"
	chiTransport "github.com/kailas-cloud/embedlab/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/embedlab/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/embedlab/internal/usecase/embedding"
	"github.com/kailas-cloud/embedlab/internal/usecase/harness"
	"github.com/kailas-cloud/embedlab/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting embedlab API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("harness_driver", cfg.Harness.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterHarnessMetrics()

	ctx := context.Background()

	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		store = s
		logger.Info("Connected to database")
	}

	// Hosted embedder chain, if configured.
	var embedder domain.Embedder
	health := make(map[string]domain.HealthChecker)
	if cfg.Embedding.Hosted.Enabled() {
		base, err := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.Hosted.APIKey,
			BaseURL:    cfg.Embedding.Hosted.BaseURL,
			Model:      cfg.Embedding.Hosted.Model,
			Dimensions: cfg.Embedding.Hosted.Dimensions,
			Provider:   "hosted",
			Logger:     logger,
		})
		if err != nil {
			logger.Fatal("Failed to create hosted embedder", zap.Error(err))
		}
		health["embedding_provider"] = base

		embedder = base
		if store != nil && cfg.Cache.Enabled {
			embedder = embcache.New(
				base, store,
				cfg.Storage.KeyPrefix, cfg.Embedding.Hosted.Model,
				time.Duration(cfg.Cache.TTLHours)*time.Hour,
				metrics.EmbeddingCacheTotal, logger,
			)
		}
		embedder = embeddinguc.NewInstrumentedEmbedder(embedder, "hosted", cfg.Embedding.Hosted.Model, logger)

		logger.Info("Hosted embedder created",
			zap.String("model", cfg.Embedding.Hosted.Model),
			zap.Bool("cache", store != nil && cfg.Cache.Enabled),
		)
	}
	if store != nil {
		health["database"] = pingerHealth{store}
	}

	// Build the vector index once at startup; /v1/search queries it.
	var index harness.VectorIndex
	if cfg.Harness.Driver == "redis" {
		index = vindex.New(store, vindex.Config{
			IndexName:   "embedlab-harness",
			KeyPrefix:   cfg.Storage.KeyPrefix,
			M:           cfg.Harness.HNSWM,
			EFConstruct: cfg.Harness.HNSWEFConstruct,
		}, logger)
	} else {
		index = flat.New()
	}

	h, err := harness.New(harness.Config{
		Driver:       cfg.Harness.Driver,
		DatabaseSize: cfg.Harness.DatabaseSize,
		QueryCount:   cfg.Harness.QueryCount,
		Dimensions:   cfg.Harness.Dimensions,
		TopK:         cfg.Harness.TopK,
		Seed:         cfg.Harness.Seed,
	}, index, logger)
	if err != nil {
		logger.Fatal("Invalid harness configuration", zap.Error(err))
	}
	buildStart := time.Now()
	if err := index.Build(ctx, h.Database()); err != nil {
		logger.Fatal("Failed to build vector index", zap.Error(err))
	}
	metrics.HarnessBuildDuration.WithLabelValues(cfg.Harness.Driver).Observe(time.Since(buildStart).Seconds())
	logger.Info("Vector index ready",
		zap.String("driver", cfg.Harness.Driver),
		zap.Int("database_size", cfg.Harness.DatabaseSize),
		zap.Int("dimensions", cfg.Harness.Dimensions),
	)

	server := chiTransport.NewServer(embedder, index, health, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// pingerHealth adapts db.Pinger to the health checker contract.
type pingerHealth struct {
	pinger db.Pinger
}

func (p pingerHealth) HealthCheck(ctx context.Context) error {
	if err := p.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
