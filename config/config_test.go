package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Backend != BackendHg {
		t.Errorf("Source.Backend = %q, expected %q", cfg.Source.Backend, BackendHg)
	}
	if cfg.Source.HgExecutable != "hg" {
		t.Errorf("Source.HgExecutable = %q, expected hg", cfg.Source.HgExecutable)
	}
	if cfg.Source.GitBranch != "" {
		t.Errorf("Source.GitBranch = %q, expected empty", cfg.Source.GitBranch)
	}
	if cfg.Resolve.Concurrency != 4 {
		t.Errorf("Resolve.Concurrency = %d, expected 4", cfg.Resolve.Concurrency)
	}
	if cfg.Burst.WindowDays != 7 {
		t.Errorf("Burst.WindowDays = %d, expected 7", cfg.Burst.WindowDays)
	}
	if cfg.Coupling.MinCoUpdates != 2 || cfg.Coupling.MinJaccardThreshold != 0.1 || cfg.Coupling.TopPairs != 20 {
		t.Errorf("Coupling = %+v", cfg.Coupling)
	}
	if cfg.Output.Format != "console" {
		t.Errorf("Output.Format = %q, expected console", cfg.Output.Format)
	}
	if cfg.Output.Top != 0 {
		t.Errorf("Output.Top = %d, expected 0", cfg.Output.Top)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Development {
		t.Errorf("Logging = %+v, expected info/false", cfg.Logging)
	}
	if cfg.Filters.Include == nil || cfg.Filters.Exclude == nil {
		t.Error("filters should be empty, not nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "Git backend", modify: func(c *Config) { c.Source.Backend = BackendGit }},
		{name: "Git backend without hg", modify: func(c *Config) {
			c.Source.Backend = BackendGit
			c.Source.HgExecutable = ""
		}},
		{name: "Unknown backend", modify: func(c *Config) { c.Source.Backend = "svn" }, wantErr: "unknown source backend"},
		{name: "Empty hg executable", modify: func(c *Config) { c.Source.HgExecutable = "" }, wantErr: "hgExecutable"},
		{name: "Zero concurrency", modify: func(c *Config) { c.Resolve.Concurrency = 0 }, wantErr: "concurrency"},
		{name: "Zero burst window", modify: func(c *Config) { c.Burst.WindowDays = 0 }, wantErr: "burst.windowDays"},
		{name: "Jaccard above one", modify: func(c *Config) { c.Coupling.MinJaccardThreshold = 1.5 }, wantErr: "minJaccardThreshold"},
		{name: "Negative top", modify: func(c *Config) { c.Output.Top = -1 }, wantErr: "output.top"},
		{name: "Debug level", modify: func(c *Config) { c.Logging.Level = "debug" }},
		{name: "Bad level", modify: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, expected nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, expected error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "source": {"backend": "git", "gitBranch": "main"},
  "filters": {"exclude": ["vendor/**"]},
  "output": {"top": 10}
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Source.Backend != BackendGit || cfg.Source.GitBranch != "main" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Source.HgExecutable != "hg" {
		t.Errorf("HgExecutable = %q, expected default to survive", cfg.Source.HgExecutable)
	}
	if cfg.Resolve.Concurrency != 4 {
		t.Errorf("Concurrency = %d, expected default 4", cfg.Resolve.Concurrency)
	}
	if len(cfg.Filters.Exclude) != 1 || cfg.Filters.Exclude[0] != "vendor/**" {
		t.Errorf("Filters.Exclude = %v", cfg.Filters.Exclude)
	}
	if cfg.Output.Top != 10 || cfg.Output.Format != "console" {
		t.Errorf("Output = %+v", cfg.Output)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Source.Backend != BackendHg {
		t.Errorf("expected defaults, got %+v", cfg.Source)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfig_Dotfile(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := os.WriteFile(filepath.Join(home, DefaultFileName), []byte(`{"resolve": {"concurrency": 2}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Resolve.Concurrency != 2 {
		t.Errorf("Concurrency = %d, expected home dotfile value 2", cfg.Resolve.Concurrency)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(`{"resolve": {"concurrency": 8}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Resolve.Concurrency != 8 {
		t.Errorf("Concurrency = %d, expected working directory dotfile to win", cfg.Resolve.Concurrency)
	}
}
