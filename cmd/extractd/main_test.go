package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/luachlabs/extractd/internal/config"
)

func TestMainIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTRACTD_SERVER_PORT", "8684")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, "")
	}()

	// Wait for server to start
	time.Sleep(200 * time.Millisecond)

	resp, err := http.Get("http://localhost:8684/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shutdown in time")
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Extraction.Provider = "anthropic"
	cfg.Extraction.ConfidenceThreshold = 0.6
	cfg.Extraction.ModelTimeout = config.Duration(20 * time.Second)
	cfg.Extraction.Providers = map[string]config.ProviderConfig{
		"anthropic": {
			Model:     "claude-3-5-haiku-20241022",
			APIKey:    "sk-test",
			MaxTokens: 512,
			Timeout:   config.Duration(45 * time.Second),
		},
	}

	ec := engineConfig(cfg)
	if ec.Provider != "anthropic" {
		t.Errorf("provider = %q", ec.Provider)
	}
	if ec.ModelTimeout != 20*time.Second {
		t.Errorf("model timeout = %v", ec.ModelTimeout)
	}
	pc := ec.Providers["anthropic"]
	if pc.APIKey != "sk-test" {
		t.Errorf("api key = %q", pc.APIKey)
	}
	if pc.Timeout != 45 {
		t.Errorf("timeout = %d, want seconds", pc.Timeout)
	}
}
