// Package config provides configuration management for the Highlighter client.
// Configuration is layered: built-in defaults, then an optional TOML file,
// then HIGHLIGHTER_* environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAPIBaseURL     = "http://localhost:8000"
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".highlighter"
	DefaultLocalAPIPort   = 8787
	DefaultRequestTimeout = 60 // seconds, JSON calls only

	EnvAPIBaseURL   = "HIGHLIGHTER_API_URL"
	EnvLogLevel     = "HIGHLIGHTER_LOG_LEVEL"
	EnvDataDir      = "HIGHLIGHTER_DATA_DIR"
	EnvLocalAPIPort = "HIGHLIGHTER_LOCAL_PORT"

	// Database filename inside the data directory.
	DBFilename = "highlighter.db"

	// ConfigFilename is the default config file inside the data directory.
	ConfigFilename = "config.toml"
)

// Config holds the client configuration.
type Config struct {
	APIBaseURL     string `toml:"api_base_url"`
	LogLevel       string `toml:"log_level"`
	DataDir        string `toml:"data_dir"`
	LocalAPIPort   int    `toml:"local_api_port"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Load builds a Config from defaults, the TOML file at path (or the default
// location when path is empty; a missing file is not an error), and finally
// environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		LogLevel:       DefaultLogLevel,
		DataDir:        defaultDataDir(),
		LocalAPIPort:   DefaultLocalAPIPort,
		RequestTimeout: DefaultRequestTimeout,
	}

	explicit := path != ""
	if path == "" {
		path = filepath.Join(cfg.DataDir, ConfigFilename)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file is fine; defaults apply.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLocalAPIPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLocalAPIPort, err)
		}
		c.LocalAPIPort = port
	}
	return nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.LocalAPIPort < 1 || c.LocalAPIPort > 65535 {
		return fmt.Errorf("local_api_port must be between 1 and 65535, got %d", c.LocalAPIPort)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %d", c.RequestTimeout)
	}
	return nil
}

// DBPath returns the full path to the SQLite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFilename)
}

// DownloadsDir returns the directory fetched artifacts are written to.
func (c *Config) DownloadsDir() string {
	return filepath.Join(c.DataDir, "downloads")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
