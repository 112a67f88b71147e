// Command embedlab runs the embedding comparison demo: tokenize a fixed
// corpus, compute one embedding table or vector per method, print the
// comparison report, then run the synthetic vector index harness.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/config"
	"github.com/kailas-cloud/embedlab/internal/db"
	dbRedis "github.com/kailas-cloud/embedlab/internal/db/redis"
	"github.com/kailas-cloud/embedlab/internal/domain"
	"github.com/kailas-cloud/embedlab/internal/domain/corpus"
	"github.com/kailas-cloud/embedlab/internal/embed/glove"
	"github.com/kailas-cloud/embedlab/internal/embed/onehot"
	"github.com/kailas-cloud/embedlab/internal/embed/word2vec"
	"github.com/kailas-cloud/embedlab/internal/index/flat"
	logpkg "github.com/kailas-cloud/embedlab/internal/logger"
	"github.com/kailas-cloud/embedlab/internal/metrics"
	"github.com/kailas-cloud/embedlab/internal/repository/embcache"
	"github.com/kailas-cloud/embedlab/internal/repository/vindex"
	bertEmb "github.com/kailas-cloud/embedlab/internal/transport/bert"
	openaiEmb "github.com/kailas-cloud/embedlab/internal/transport/openai"
	"github.com/kailas-cloud/embedlab/internal/usecase/embedding"
	"github.com/kailas-cloud/embedlab/internal/usecase/harness"
	"github.com/kailas-cloud/embedlab/internal/usecase/report"
	"github.com/kailas-cloud/embedlab/internal/version"
)

// demoCorpus is the fixed input; the pipeline has no external corpus format.
var demoCorpus = corpus.Corpus{
	"I love natural language processing",
	"Deep learning is a key technology for AI",
}

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

	logger.Info("Starting embedlab demo run",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("harness_driver", cfg.Harness.Driver),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterHarnessMetrics()

	ctx := context.Background()

	// Optional store: embedding cache and the redis harness driver need it.
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

	tokenized := demoCorpus.Tokenize()
	vocabulary := demoCorpus.Vocabulary()
	logger.Info("Corpus tokenized",
		zap.Int("sentences", len(demoCorpus)),
		zap.Int("vocabulary", len(vocabulary)),
	)

	builder := report.NewBuilder()
	word := cfg.Report.ExampleWord
	sentence := cfg.Report.ExampleSentence

	// Each method is isolated: a failure becomes an error row, the rest of
	// the report still renders.
	builder.AddTableRow("one-hot", word, onehot.Table(vocabulary))

	w2vTable, err := word2vec.Train(tokenized, word2vec.Config{
		Dimensions:      cfg.Embedding.Word2Vec.Dimensions,
		Window:          cfg.Embedding.Word2Vec.Window,
		MinCount:        cfg.Embedding.Word2Vec.MinCount,
		Epochs:          cfg.Embedding.Word2Vec.Epochs,
		NegativeSamples: cfg.Embedding.Word2Vec.NegativeSamples,
		LearningRate:    cfg.Embedding.Word2Vec.LearningRate,
		Seed:            cfg.Embedding.Word2Vec.Seed,
	})
	if err != nil {
		builder.AddErrorRow("word2vec", err)
	} else {
		builder.AddTableRow("word2vec", word, w2vTable)
	}

	builder.AddTableRow("glove (placeholder)", word,
		glove.Placeholder(vocabulary, cfg.Embedding.GloVe.Dimensions, cfg.Embedding.GloVe.Seed))

	if cfg.Embedding.BERT.Enabled() {
		bert := bertEmb.NewEmbedder(&bertEmb.Config{
			BaseURL: cfg.Embedding.BERT.BaseURL,
			Model:   cfg.Embedding.BERT.Model,
			Timeout: time.Duration(cfg.Embedding.BERT.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		tokens, err := bert.EmbedTokens(ctx, sentence)
		if err != nil {
			builder.AddErrorRow("bert", err)
		} else {
			builder.AddShapeRow("bert", len(tokens.Vectors), tokens.Dimensions())
		}
	}

	if cfg.Embedding.Hosted.Enabled() {
		hosted, err := buildHostedEmbedder(cfg, store, logger)
		if err != nil {
			builder.AddErrorRow("hosted", err)
		} else {
			result, err := hosted.Embed(ctx, sentence)
			if err != nil {
				builder.AddErrorRow("hosted", err)
			} else {
				builder.AddVectorRow("hosted", result.Embedding)
			}
		}
	}

	fmt.Printf("embedding comparison for %q / %q:\n", word, sentence)
	if err := builder.Render(os.Stdout); err != nil {
		logger.Fatal("Failed to render report", zap.Error(err))
	}

	// Vector index harness — fatal on failure, partial matrices are useless.
	index := buildIndex(cfg, store, logger)
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

	result, err := h.Run(ctx)
	if err != nil {
		logger.Fatal("Harness run failed", zap.Error(err))
	}

	fmt.Printf("\nvector index harness (%s, nb=%d nq=%d d=%d k=%d seed=%d):\n",
		cfg.Harness.Driver, cfg.Harness.DatabaseSize, cfg.Harness.QueryCount,
		cfg.Harness.Dimensions, cfg.Harness.TopK, cfg.Harness.Seed)
	if err := result.Print(os.Stdout); err != nil {
		logger.Fatal("Failed to print harness result", zap.Error(err))
	}

	logger.Info("Demo run completed")
}

// buildHostedEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildHostedEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) (domain.Embedder, error) {
	base, err := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.Hosted.APIKey,
		BaseURL:    cfg.Embedding.Hosted.BaseURL,
		Model:      cfg.Embedding.Hosted.Model,
		Dimensions: cfg.Embedding.Hosted.Dimensions,
		Provider:   "hosted",
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	var embedder domain.Embedder = base
	if store != nil && cfg.Cache.Enabled {
		embedder = embcache.New(
			base, store,
			cfg.Storage.KeyPrefix, cfg.Embedding.Hosted.Model,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	return embedding.NewInstrumentedEmbedder(embedder, "hosted", cfg.Embedding.Hosted.Model, logger), nil
}

// buildIndex picks the harness driver: in-process exact scan or an external
// HNSW index. Validate guarantees a store exists for the redis driver.
func buildIndex(cfg config.Config, store db.Store, logger *zap.Logger) harness.VectorIndex {
	if cfg.Harness.Driver == "redis" {
		return vindex.New(store, vindex.Config{
			IndexName:   "embedlab-harness",
			KeyPrefix:   cfg.Storage.KeyPrefix,
			M:           cfg.Harness.HNSWM,
			EFConstruct: cfg.Harness.HNSWEFConstruct,
		}, logger)
	}
	return flat.New()
}
