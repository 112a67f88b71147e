package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/embedlab/internal/config"
	"github.com/kailas-cloud/embedlab/internal/domain"
	"github.com/kailas-cloud/embedlab/internal/usecase/report"
)

// A hosted model without credentials must reach the report as an error row:
// the config layer accepts it, the adapter refuses construction with
// ErrAuthentication, and the other methods still render.
func TestHostedWithoutKeyBecomesErrorRow(t *testing.T) {
	var cfg config.Config
	cfg.Embedding.Hosted.Model = "text-embedding-3-small"
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("config with keyless hosted model rejected: %v", err)
	}

	_, err := buildHostedEmbedder(cfg, nil, zap.NewNop())
	if !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}

	builder := report.NewBuilder()
	builder.AddTableRow("one-hot", "ai", domain.Table{"ai": {1, 0}})
	builder.AddErrorRow("hosted", err)

	var buf bytes.Buffer
	if err := builder.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "one-hot:") {
		t.Errorf("one-hot row missing from report:\n%s", out)
	}
	if !strings.Contains(out, "unavailable:") {
		t.Errorf("hosted error row missing from report:\n%s", out)
	}
}
