package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory when no
// --config flag is given.
const DefaultPath = "bsa.yaml"

// Config represents the optional bsa.yaml tool configuration. It supplies
// defaults for the analyze flags; flags always override it.
type Config struct {
	Categories    string `yaml:"categories,omitempty"`
	StatementType string `yaml:"statement_type,omitempty"`
	Print         string `yaml:"print,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Print: "table,summary",
	}
}

// Load reads a bsa.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOptional loads path if it exists, the defaults otherwise.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
