// Package config loads the optional per-project cdeps.yaml file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ProjectConfig mirrors cdeps.yaml. Unset fields leave the defaults alone.
type ProjectConfig struct {
	Parser         string                `yaml:"parser,omitempty"`
	Strict         *bool                 `yaml:"strict,omitempty"`
	IncludeStyle   string                `yaml:"include_style,omitempty"`
	OnParseFailure string                `yaml:"on_parse_failure,omitempty"`
	Workers        *int                  `yaml:"workers,omitempty"`
	Extensions     []cdeps.ExtensionRule `yaml:"extensions,omitempty"`
	Exclude        []string              `yaml:"exclude,omitempty"`
}

// Load reads cdeps.yaml from the scan root. Unknown keys are rejected.
func Load(root string) (*ProjectConfig, error) {
	configPath := filepath.Join(filepath.FromSlash(root), cdeps.ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: %w", configPath, cdeps.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Apply overlays the fields set in the file onto cfg.
func (p *ProjectConfig) Apply(cfg *cdeps.ScanConfig) {
	if p.Parser != "" {
		cfg.Parser = cdeps.ParserBackend(p.Parser)
	}
	if p.Strict != nil {
		cfg.Strict = *p.Strict
	}
	if p.IncludeStyle != "" {
		cfg.IncludeStyle = cdeps.IncludeStyle(p.IncludeStyle)
	}
	if p.OnParseFailure != "" {
		cfg.OnParseFailure = cdeps.ParseFailurePolicy(p.OnParseFailure)
	}
	if p.Workers != nil {
		cfg.Workers = *p.Workers
	}
	if len(p.Extensions) > 0 {
		cfg.Extensions = append([]cdeps.ExtensionRule(nil), p.Extensions...)
	}
	if len(p.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, p.Exclude...)
	}
}
