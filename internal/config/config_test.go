package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, DefaultAPIBaseURL)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LocalAPIPort != DefaultLocalAPIPort {
		t.Errorf("LocalAPIPort = %d, want %d", cfg.LocalAPIPort, DefaultLocalAPIPort)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	content := `
api_base_url = "https://highlights.example.com"
log_level = "debug"
local_api_port = 9999
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIBaseURL != "https://highlights.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LocalAPIPort != 9999 {
		t.Errorf("LocalAPIPort = %d, want 9999", cfg.LocalAPIPort)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = "http://from-file"`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAPIBaseURL, "http://from-env")
	t.Setenv(EnvDataDir, tmpDir)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIBaseURL != "http://from-env" {
		t.Errorf("APIBaseURL = %q, want env override", cfg.APIBaseURL)
	}
	if cfg.DataDir != tmpDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, tmpDir)
	}
	if cfg.DBPath() != filepath.Join(tmpDir, DBFilename) {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv(EnvLocalAPIPort, "70000")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for out-of-range port")
	}

	t.Setenv(EnvLocalAPIPort, "abc")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}
