package maquette

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "generated_sites" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.DefaultFramework != "vanilla" {
		t.Errorf("DefaultFramework = %q", cfg.DefaultFramework)
	}
	if cfg.NavigateTimeout != 30*time.Second {
		t.Errorf("NavigateTimeout = %v", cfg.NavigateTimeout)
	}
	if cfg.SimilarityWidth != 256 {
		t.Errorf("SimilarityWidth = %d", cfg.SimilarityWidth)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maquette.yaml")
	data := `
output_dir: /tmp/clones
default_framework: react
navigate_timeout_ms: 5000
viewport_width: 1920
disable_compare: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "/tmp/clones" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.DefaultFramework != "react" {
		t.Errorf("DefaultFramework = %q", cfg.DefaultFramework)
	}
	if cfg.NavigateTimeout != 5*time.Second {
		t.Errorf("NavigateTimeout = %v", cfg.NavigateTimeout)
	}
	if cfg.ViewportWidth != 1920 {
		t.Errorf("ViewportWidth = %d", cfg.ViewportWidth)
	}
	if !cfg.DisableCompare {
		t.Error("DisableCompare not set")
	}
	// Untouched fields keep their defaults.
	if cfg.RunsDB != "db/runs.db" {
		t.Errorf("RunsDB = %q", cfg.RunsDB)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrConfig) {
		t.Errorf("missing file err = %v, want ErrConfig", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte(":\n\t- not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); !errors.Is(err, ErrConfig) {
		t.Errorf("bad yaml err = %v, want ErrConfig", err)
	}
}
