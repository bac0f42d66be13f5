// Package config loads the ontocat.yaml project file that points the CLI at
// a catalog root and its query and results directories.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name the CLI looks for in the working
// directory.
const DefaultFile = "ontocat.yaml"

type ProjectConfig struct {
	Project string  `yaml:"project"`
	Version int     `yaml:"version"`
	Catalog Catalog `yaml:"catalog"`
}

type Catalog struct {
	// Path is the catalog root; models live under <path>/models.
	Path string `yaml:"path"`
	// QueriesDir holds the SPARQL query files for batch runs.
	QueriesDir string `yaml:"queries_dir"`
	// ResultsDir receives CSV result files and the hash ledger.
	ResultsDir string `yaml:"results_dir"`
	// Limit caps how many models load when > 0.
	Limit int `yaml:"limit"`
	// SkipInvalid loads past malformed model folders, collecting errors.
	SkipInvalid bool `yaml:"skip_invalid"`
	// Exclude holds doublestar globs for model folder names to skip.
	Exclude []string `yaml:"exclude"`
}

func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if cfg.Catalog.ResultsDir == "" {
		cfg.Catalog.ResultsDir = "results"
	}

	return &cfg, nil
}

func validate(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		return fmt.Errorf("catalog path is required")
	}
	if cfg.Catalog.Limit < 0 {
		return fmt.Errorf("catalog limit must not be negative")
	}
	return nil
}
