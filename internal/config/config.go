package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the embedlab configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Harness   HarnessConfig   `yaml:"harness"`
	Report    ReportConfig    `yaml:"report"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for embedlabd.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings for embedlabd.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings. Addrs may be empty: the
// store is only required for the cache and the redis harness driver.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key naming settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"`
}

// EmbeddingConfig holds settings per embedding method.
type EmbeddingConfig struct {
	Hosted   HostedConfig   `yaml:"hosted"`
	BERT     BERTConfig     `yaml:"bert"`
	Word2Vec Word2VecConfig `yaml:"word2vec"`
	GloVe    GloVeConfig    `yaml:"glove"`
}

// HostedConfig holds the OpenAI-compatible provider settings. Credentials are
// carried here explicitly instead of being read from the environment at call
// sites; YAML-level ${VAR} expansion sources them from the environment once.
type HostedConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"` // 0 = provider default
}

// Enabled reports whether a hosted provider is configured at all.
func (c HostedConfig) Enabled() bool { return c.Model != "" }

// BERTConfig holds the local contextual-model inference server settings.
type BERTConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Enabled reports whether a contextual model endpoint is configured.
func (c BERTConfig) Enabled() bool { return c.BaseURL != "" }

// Word2VecConfig holds local training hyperparameters.
type Word2VecConfig struct {
	Dimensions      int     `yaml:"dimensions"`
	Window          int     `yaml:"window"`
	MinCount        int     `yaml:"min_count"`
	Epochs          int     `yaml:"epochs"`
	NegativeSamples int     `yaml:"negative_samples"`
	LearningRate    float64 `yaml:"learning_rate"`
	Seed            int64   `yaml:"seed"`
}

// GloVeConfig holds the placeholder settings.
type GloVeConfig struct {
	Dimensions int   `yaml:"dimensions"`
	Seed       int64 `yaml:"seed"`
}

// HarnessConfig holds vector index harness settings.
type HarnessConfig struct {
	Driver          string `yaml:"driver"` // flat, redis (default: flat)
	DatabaseSize    int    `yaml:"database_size"`
	QueryCount      int    `yaml:"query_count"`
	Dimensions      int    `yaml:"dimensions"`
	TopK            int    `yaml:"top_k"`
	Seed            int64  `yaml:"seed"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// ReportConfig holds embedding report settings.
type ReportConfig struct {
	ExampleWord     string `yaml:"example_word"`
	ExampleSentence string `yaml:"example_sentence"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "embedlab:"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}

	if c.Embedding.BERT.TimeoutSec <= 0 {
		c.Embedding.BERT.TimeoutSec = 30
	}

	w2v := &c.Embedding.Word2Vec
	if w2v.Dimensions <= 0 {
		w2v.Dimensions = 10
	}
	if w2v.Window <= 0 {
		w2v.Window = 5
	}
	if w2v.MinCount <= 0 {
		w2v.MinCount = 1
	}
	if w2v.Epochs <= 0 {
		w2v.Epochs = 50
	}
	if w2v.NegativeSamples <= 0 {
		w2v.NegativeSamples = 5
	}
	if w2v.LearningRate <= 0 {
		w2v.LearningRate = 0.025
	}
	if w2v.Seed == 0 {
		w2v.Seed = 1
	}

	if c.Embedding.GloVe.Dimensions <= 0 {
		c.Embedding.GloVe.Dimensions = 10
	}
	if c.Embedding.GloVe.Seed == 0 {
		c.Embedding.GloVe.Seed = 1
	}

	h := &c.Harness
	if h.Driver == "" {
		h.Driver = "flat"
	}
	if h.DatabaseSize <= 0 {
		h.DatabaseSize = 10000
	}
	if h.QueryCount <= 0 {
		h.QueryCount = 5
	}
	if h.Dimensions <= 0 {
		h.Dimensions = 128
	}
	if h.TopK <= 0 {
		h.TopK = 4
	}
	if h.Seed == 0 {
		h.Seed = 1234
	}
	if h.HNSWM <= 0 {
		h.HNSWM = 32
	}
	if h.HNSWEFConstruct <= 0 {
		h.HNSWEFConstruct = 400
	}

	if c.Report.ExampleWord == "" {
		c.Report.ExampleWord = "learning"
	}
	if c.Report.ExampleSentence == "" {
		c.Report.ExampleSentence = "Deep learning is a key technology for AI"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Harness.Driver {
	case "flat", "redis":
		// ok
	default:
		return fmt.Errorf("harness.driver must be \"flat\" or \"redis\", got %q", c.Harness.Driver)
	}
	if c.Harness.Driver == "redis" && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for the redis harness driver")
	}
	if c.Harness.TopK > c.Harness.DatabaseSize {
		return fmt.Errorf(
			"harness.top_k (%d) must not exceed harness.database_size (%d)",
			c.Harness.TopK, c.Harness.DatabaseSize,
		)
	}

	if c.Cache.Enabled && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required when cache.enabled is true")
	}

	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
