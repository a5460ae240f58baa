package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the subset of flags that make sense to carry in a
// project-level config file, loaded via "--config" before flags are parsed
// so that explicit command-line flags always win over the file.
type fileConfig struct {
	Defines           map[string]string `yaml:"defines"`
	Includes          []string          `yaml:"includes"`
	LineNumbering     bool              `yaml:"line-numbering"`
	LineNumberingMode string            `yaml:"line-numbering-mode"`
	LineMarkerFormat  string            `yaml:"line-marker-format"`
	LineLength        int               `yaml:"line-length"`
	FoldingMode       string            `yaml:"folding-mode"`
	NoFolding         bool              `yaml:"no-folding"`
	Indentation       int               `yaml:"indentation"`
	FixedFormat       bool              `yaml:"fixed-format"`
	Encoding          string            `yaml:"encoding"`
	CreateParents     bool              `yaml:"create-parents"`
	FileVarRoot       string            `yaml:"file-var-root"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}
