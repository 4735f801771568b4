package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// DefaultFileName is the dotfile looked up when no path is given.
const DefaultFileName = ".hglineage.json"

// Source backends.
const (
	BackendHg  = "hg"
	BackendGit = "git"
)

// Config is the root configuration structure.
type Config struct {
	Source   SourceConfig   `json:"source"`
	Resolve  ResolveConfig  `json:"resolve"`
	Filters  FilterConfig   `json:"filters"`
	Burst    BurstConfig    `json:"burst"`
	Coupling CouplingConfig `json:"coupling"`
	Output   OutputConfig   `json:"output"`
	Logging  LoggingConfig  `json:"logging"`
}

// SourceConfig selects where history text comes from.
type SourceConfig struct {
	Backend      string `json:"backend"`      // "hg" or "git"
	HgExecutable string `json:"hgExecutable"` // Default: "hg"
	GitBranch    string `json:"gitBranch"`    // Empty means HEAD
}

// ResolveConfig holds resolver options.
type ResolveConfig struct {
	Concurrency int `json:"concurrency"`
}

// FilterConfig holds sub-repository name filters (doublestar globs).
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// BurstConfig holds the window used to score bursts of sub-repository updates.
type BurstConfig struct {
	WindowDays int `json:"windowDays"`
}

// CouplingConfig holds sub-repository co-update analysis options.
type CouplingConfig struct {
	MinCoUpdates        int     `json:"minCoUpdates"`
	MinJaccardThreshold float64 `json:"minJaccardThreshold"`
	TopPairs            int     `json:"topPairs"`
}

// OutputConfig holds report defaults.
type OutputConfig struct {
	Format string `json:"format"`
	Top    int    `json:"top"` // 0 = all
}

// LoggingConfig holds logger options.
type LoggingConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Backend:      BackendHg,
			HgExecutable: "hg",
		},
		Resolve: ResolveConfig{
			Concurrency: 4,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Burst: BurstConfig{
			WindowDays: 7,
		},
		Coupling: CouplingConfig{
			MinCoUpdates:        2,
			MinJaccardThreshold: 0.1,
			TopPairs:            20,
		},
		Output: OutputConfig{
			Format: "console",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source.Backend {
	case BackendHg, BackendGit:
	default:
		return fmt.Errorf("unknown source backend %q (want %q or %q)", c.Source.Backend, BackendHg, BackendGit)
	}
	if c.Source.Backend == BackendHg && c.Source.HgExecutable == "" {
		return fmt.Errorf("source.hgExecutable must not be empty")
	}
	if c.Resolve.Concurrency < 1 {
		return fmt.Errorf("resolve.concurrency must be positive, got %d", c.Resolve.Concurrency)
	}
	if c.Burst.WindowDays < 1 {
		return fmt.Errorf("burst.windowDays must be positive, got %d", c.Burst.WindowDays)
	}
	if c.Coupling.MinJaccardThreshold < 0 || c.Coupling.MinJaccardThreshold > 1 {
		return fmt.Errorf("coupling.minJaccardThreshold must be within [0, 1], got %g", c.Coupling.MinJaccardThreshold)
	}
	if c.Output.Top < 0 {
		return fmt.Errorf("output.top must not be negative, got %d", c.Output.Top)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{DefaultFileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, DefaultFileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, DefaultFileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}
