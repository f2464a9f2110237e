// Package config loads session configuration from YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"coscientist/internal/memory"
)

// Config is the session configuration. Zero values fall back to defaults at
// load time, so partial files are fine.
type Config struct {
	SessionID   string `yaml:"session_id" json:"session_id"`
	Backend     string `yaml:"backend" json:"backend"`           // "file" or "sqlite"
	StoragePath string `yaml:"storage_path" json:"storage_path"` // dir for file backend, db path for sqlite

	MaxRounds      int `yaml:"max_rounds" json:"max_rounds"`
	MaxMatches     int `yaml:"max_matches" json:"max_matches"`
	MaxComparisons int `yaml:"max_comparisons" json:"max_comparisons"`
	EvolveTop      int `yaml:"evolve_top" json:"evolve_top"`
	MetaReviewTop  int `yaml:"meta_review_top" json:"meta_review_top"`
	Concurrency    int `yaml:"concurrency" json:"concurrency"`
	CallTimeoutSec int `yaml:"call_timeout_seconds" json:"call_timeout_seconds"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Backend:        "file",
		StoragePath:    memory.DefaultFileDir,
		MaxRounds:      10,
		MaxMatches:     10,
		MaxComparisons: 20,
		EvolveTop:      3,
		MetaReviewTop:  5,
		Concurrency:    4,
		CallTimeoutSec: 120,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// LoadFromPath reads a config file (YAML or JSON). Format is detected by
// extension (.yaml/.yml/.json) or by content (first non-whitespace char).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config from bytes. ext is the file extension for the format
// hint; empty means detect from content. Missing fields keep their defaults.
func Load(data []byte, ext string) (*Config, error) {
	cfg := Default()

	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	useJSON := ext == ".json"
	if ext == "" {
		useJSON = strings.HasPrefix(strings.TrimSpace(string(data)), "{")
	}

	if useJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if cfg.Backend != "file" && cfg.Backend != "sqlite" {
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return &cfg, nil
}

// OpenStore opens the configured persistence backend for a session.
func (c *Config) OpenStore(sessionID string) (memory.Store, error) {
	switch c.Backend {
	case "sqlite":
		path := c.StoragePath
		if path == "" || path == memory.DefaultFileDir {
			path = memory.DefaultDBPath
		}
		return memory.OpenSQL(path, sessionID)
	default:
		dir := c.StoragePath
		if dir == "" {
			dir = memory.DefaultFileDir
		}
		return memory.OpenFile(dir, sessionID)
	}
}
