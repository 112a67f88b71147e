package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Harness: HarnessConfig{Driver: "flat"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownHarnessDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Harness.Driver = "faiss"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown harness driver")
	}

	expected := `harness.driver must be "flat" or "redis", got "faiss"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_RedisDriverRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Harness.Driver = "redis"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis driver without database addrs")
	}

	cfg.Database.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with addrs configured: %v", err)
	}
}

func TestValidate_TopKExceedsDatabaseSize(t *testing.T) {
	cfg := validConfig()
	cfg.Harness.DatabaseSize = 10
	cfg.Harness.TopK = 11

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for top_k exceeding database_size")
	}
}

func TestValidate_CacheRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for cache without database addrs")
	}
}

// A hosted model without credentials must pass validation: the missing key
// surfaces as an authentication error row in the report, not as a config
// rejection that would keep the local methods from running.
func TestValidate_HostedModelWithoutAPIKeyIsAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Hosted.Model = "text-embedding-3-small"
	cfg.Embedding.Hosted.APIKey = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for hosted model without api key: %v", err)
	}
}

func TestApplyDefaults_HarnessParameters(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	h := cfg.Harness
	if h.Driver != "flat" {
		t.Errorf("default driver = %q, want flat", h.Driver)
	}
	if h.DatabaseSize != 10000 || h.QueryCount != 5 || h.Dimensions != 128 || h.TopK != 4 {
		t.Errorf("unexpected harness defaults: %+v", h)
	}
	if h.Seed != 1234 {
		t.Errorf("default seed = %d, want 1234", h.Seed)
	}
	if h.HNSWM != 32 || h.HNSWEFConstruct != 400 {
		t.Errorf("unexpected HNSW defaults: M=%d EF=%d", h.HNSWM, h.HNSWEFConstruct)
	}
}

func TestApplyDefaults_Word2Vec(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	w := cfg.Embedding.Word2Vec
	if w.Dimensions != 10 || w.Window != 5 || w.MinCount != 1 {
		t.Errorf("unexpected word2vec defaults: %+v", w)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EMBEDLAB_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${EMBEDLAB_TEST_KEY}")))
	if got != "api_key: secret" {
		t.Errorf("expanded = %q", got)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	_ = os.Unsetenv("EMBEDLAB_MISSING_VAR")

	got := string(expandEnvVars([]byte("addr: ${EMBEDLAB_MISSING_VAR:-localhost:6379}")))
	if got != "addr: localhost:6379" {
		t.Errorf("expanded = %q", got)
	}
}
