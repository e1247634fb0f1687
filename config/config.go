// Package config loads service configuration from a YAML file with sane
// defaults for every field, so the service starts with no file at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Embedder Embedder `yaml:"embedder"`
	Ingest   Ingest   `yaml:"ingest"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `yaml:"addr"`
}

// Database configures the SQLite file.
type Database struct {
	Path string `yaml:"path"`
}

// Embedder configures the embedding backend. The API key is never stored in
// the file; APIKeyEnv names the environment variable that holds it.
type Embedder struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Ingest configures background upload processing. WatchDir is optional; when
// empty the drop-folder watcher is disabled.
type Ingest struct {
	WatchDir       string `yaml:"watch_dir"`
	JobTimeoutSecs int    `yaml:"job_timeout_secs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080"},
		Database: Database{Path: "faqbase.db"},
		Embedder: Embedder{
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "text-embedding-3-small",
			Dimensions:  768,
			TimeoutSecs: 30,
		},
		Ingest: Ingest{JobTimeoutSecs: 300},
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// defaults apply as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
