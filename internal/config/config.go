// Package config provides configuration loading and structs for tadoru.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/tadoru/internal/pattern"
)

// Config holds all configuration for the application, including the named
// pattern sets. It is constructed once, before any scanning, and passed
// read-only into the workers.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Scan     ScanConfig     `yaml:"scan"`
	Results  ResultsConfig  `yaml:"results"`
	Server   ServerConfig   `yaml:"server"`
	Patterns []pattern.Spec `yaml:"patterns"`
}

// CorpusConfig locates the corpus.
type CorpusConfig struct {
	Root string `yaml:"root"`
}

// ScanConfig holds matching and context settings.
type ScanConfig struct {
	ContextWidth     int  `yaml:"context_width"`
	Workers          int  `yaml:"workers"` // 0 = number of CPUs
	SuppressOverlaps bool `yaml:"suppress_overlaps"`
}

// ResultsConfig holds output settings. Format is "csv" or "xlsx";
// DatabasePath, when set, additionally persists runs to SQLite.
type ResultsConfig struct {
	Dir          string `yaml:"dir"`
	Format       string `yaml:"format"`
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Root = expandPath(cfg.Corpus.Root, configDir)
	cfg.Results.Dir = expandPath(cfg.Results.Dir, configDir)
	if cfg.Results.DatabasePath != "" {
		cfg.Results.DatabasePath = expandPath(cfg.Results.DatabasePath, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
