// Package config loads optional CLI configuration from a YAML file.
// Everything has a default; a missing default config file is not an
// error, but a missing file named explicitly is.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is probed when no --config flag is given.
const DefaultPath = ".reflow.yaml"

// Config holds CLI-level settings. The scheduling core takes no
// configuration; these only shape how the tool runs and reports.
type Config struct {
	HistoryDir  string `yaml:"history_dir"`
	MaxParallel int    `yaml:"max_parallel"`
	JSONOutput  bool   `yaml:"json_output"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		HistoryDir:  ".reflow",
		MaxParallel: 4,
	}
}

// Load reads the config file at path, overlaying defaults. An empty
// path probes DefaultPath, and a missing DefaultPath yields the defaults;
// an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	probe := path == ""
	if probe {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && probe {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.HistoryDir == "" {
		cfg.HistoryDir = ".reflow"
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return cfg, nil
}
