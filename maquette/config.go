package maquette

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures the maquette service.
type Config struct {
	// OutputDir is the root under which each run gets its own subdirectory.
	OutputDir string

	// RunsDB is the SQLite path of the run log.
	RunsDB string

	// DefaultFramework is used when neither the request nor the analysis
	// names one.
	DefaultFramework string

	// GeminiAPIKey authorizes the vision and code-generation calls.
	// Required unless a client is injected with WithLLM.
	GeminiAPIKey string

	// GeminiModel selects the model for both calls.
	GeminiModel string

	// ProjectTag is an auxiliary label recorded on every run.
	ProjectTag string

	// ChromeURL is the WebSocket URL of an external Chrome.
	// Empty = launch a local one.
	ChromeURL string

	// Capture settings.
	NavigateTimeout time.Duration
	SettleDelay     time.Duration
	ViewportWidth   int
	ViewportHeight  int

	// SimilarityWidth is the width both screenshots are downscaled to
	// before SSIM comparison.
	SimilarityWidth int

	// DisableCompare skips the similarity step entirely.
	DisableCompare bool
}

func (c *Config) defaults() {
	if c.OutputDir == "" {
		c.OutputDir = "generated_sites"
	}
	if c.RunsDB == "" {
		c.RunsDB = "db/runs.db"
	}
	if c.DefaultFramework == "" {
		c.DefaultFramework = "vanilla"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.0-flash"
	}
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 800
	}
	if c.SimilarityWidth <= 0 {
		c.SimilarityWidth = 256
	}
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

// fileConfig is the YAML shape of the optional config file. Durations are
// milliseconds so the file stays plain integers.
type fileConfig struct {
	OutputDir         string `yaml:"output_dir"`
	RunsDB            string `yaml:"runs_db"`
	DefaultFramework  string `yaml:"default_framework"`
	GeminiModel       string `yaml:"gemini_model"`
	ProjectTag        string `yaml:"project_tag"`
	ChromeURL         string `yaml:"chrome_url"`
	NavigateTimeoutMs int64  `yaml:"navigate_timeout_ms"`
	SettleDelayMs     int64  `yaml:"settle_delay_ms"`
	ViewportWidth     int    `yaml:"viewport_width"`
	ViewportHeight    int    `yaml:"viewport_height"`
	SimilarityWidth   int    `yaml:"similarity_width"`
	DisableCompare    bool   `yaml:"disable_compare"`
}

// LoadConfig returns the defaults, overlaid with the YAML file at path when
// path is non-empty. Secrets (the API key) never live in the file.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config %s: %v", ErrConfig, path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: parse config %s: %v", ErrConfig, path, err)
	}

	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.RunsDB != "" {
		cfg.RunsDB = fc.RunsDB
	}
	if fc.DefaultFramework != "" {
		cfg.DefaultFramework = fc.DefaultFramework
	}
	if fc.GeminiModel != "" {
		cfg.GeminiModel = fc.GeminiModel
	}
	if fc.ProjectTag != "" {
		cfg.ProjectTag = fc.ProjectTag
	}
	if fc.ChromeURL != "" {
		cfg.ChromeURL = fc.ChromeURL
	}
	if fc.NavigateTimeoutMs > 0 {
		cfg.NavigateTimeout = time.Duration(fc.NavigateTimeoutMs) * time.Millisecond
	}
	if fc.SettleDelayMs > 0 {
		cfg.SettleDelay = time.Duration(fc.SettleDelayMs) * time.Millisecond
	}
	if fc.ViewportWidth > 0 {
		cfg.ViewportWidth = fc.ViewportWidth
	}
	if fc.ViewportHeight > 0 {
		cfg.ViewportHeight = fc.ViewportHeight
	}
	if fc.SimilarityWidth > 0 {
		cfg.SimilarityWidth = fc.SimilarityWidth
	}
	if fc.DisableCompare {
		cfg.DisableCompare = true
	}
	return cfg, nil
}
