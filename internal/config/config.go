package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimgate/internal/model"
)

// Config holds all runtime configuration for a claimgate run.
type Config struct {
	CatalogPath string
	FeesPath    string
	ModelPath   string
	ClaimPath   string // assess: single claim JSON document
	InputPath   string // train/load/plan: historical claims file
	OutPath     string // train: artifact output path
	DSN         string
	LogFormat   string // "text" or "json"
	Force       bool

	// Tunables, overridable from an engine YAML file.
	LabelColumns      []string `yaml:"label_columns"`
	DecisionThreshold float64  `yaml:"decision_threshold"`
	TestFraction      float64  `yaml:"test_fraction"`
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	LabelColumns      []string `yaml:"label_columns"`
	DecisionThreshold *float64 `yaml:"decision_threshold"`
	TestFraction      *float64 `yaml:"test_fraction"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if len(yc.LabelColumns) > 0 {
		c.LabelColumns = yc.LabelColumns
	}
	if yc.DecisionThreshold != nil {
		c.DecisionThreshold = *yc.DecisionThreshold
	}
	if yc.TestFraction != nil {
		c.TestFraction = *yc.TestFraction
	}
	return c.validateTunables()
}

// ApplyDefaults fills tunables that neither flags nor the YAML overlay set.
func (c *Config) ApplyDefaults() {
	if len(c.LabelColumns) == 0 {
		c.LabelColumns = model.LabelColumns
	}
	if c.DecisionThreshold == 0 {
		c.DecisionThreshold = 0.5
	}
	if c.TestFraction == 0 {
		c.TestFraction = 0.3
	}
}

func (c *Config) validateTunables() error {
	if c.DecisionThreshold < 0 || c.DecisionThreshold > 1 {
		return fmt.Errorf("decision_threshold %v out of range [0,1]", c.DecisionThreshold)
	}
	if c.TestFraction < 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test_fraction %v out of range [0,1)", c.TestFraction)
	}
	for _, col := range c.LabelColumns {
		if !knownLabelColumn(col) {
			return fmt.Errorf("unknown label column %q in config", col)
		}
	}
	return nil
}

func knownLabelColumn(name string) bool {
	for _, known := range model.LabelColumns {
		if name == known {
			return true
		}
	}
	return false
}

// ValidateArtifacts checks the catalog and fee-schedule paths, which every
// adjudication or training run requires.
func (c *Config) ValidateArtifacts() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("--catalog is required")
	}
	if _, err := os.Stat(c.CatalogPath); err != nil {
		return fmt.Errorf("catalog not accessible: %w", err)
	}
	if c.FeesPath == "" {
		return fmt.Errorf("--fees is required")
	}
	if _, err := os.Stat(c.FeesPath); err != nil {
		return fmt.Errorf("fee schedule not accessible: %w", err)
	}
	return nil
}

// ValidateInput checks the historical-claims input path.
func (c *Config) ValidateInput() error {
	if c.InputPath == "" {
		return fmt.Errorf("--input is required")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return fmt.Errorf("input file not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks that a database connection string is configured.
func (c *Config) ValidateWithDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or CLAIMGATE_DB_URL is required")
	}
	return nil
}
