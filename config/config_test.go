package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load on missing file failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing file config = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	src := `
server:
  addr: ":9090"
embedder:
  model: custom-model
  dimensions: 256
ingest:
  watch_dir: /var/drop
`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Embedder.Model != "custom-model" || cfg.Embedder.Dimensions != 256 {
		t.Errorf("embedder = %+v", cfg.Embedder)
	}
	if cfg.Ingest.WatchDir != "/var/drop" {
		t.Errorf("watch_dir = %q", cfg.Ingest.WatchDir)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.Path != "faqbase.db" {
		t.Errorf("database path = %q, want default", cfg.Database.Path)
	}
	if cfg.Embedder.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("api key env = %q, want default", cfg.Embedder.APIKeyEnv)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml should fail")
	}
}
