// Package report renders a scan result for machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s): %w", s, FormatJSON, FormatYAML, cdeps.ErrUsage)
	}
}

// Report is the serialized form of a cdeps.ScanResult.
type Report struct {
	ID           string              `json:"id" yaml:"id"`
	Root         string              `json:"root" yaml:"root"`
	Files        []cdeps.ProjectFile `json:"files" yaml:"files"`
	Dependencies cdeps.DependencyMap `json:"dependencies" yaml:"dependencies"`
	Failures     []Failure           `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failure is a skipped file with its error message.
type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// FromResult converts a scan result. Nil collections become empty ones so
// the encoded document always carries every key.
func FromResult(result cdeps.ScanResult) Report {
	r := Report{
		ID:           result.ID,
		Root:         result.Root,
		Files:        result.Files,
		Dependencies: result.Dependencies,
	}
	if r.Files == nil {
		r.Files = []cdeps.ProjectFile{}
	}
	if r.Dependencies == nil {
		r.Dependencies = cdeps.DependencyMap{}
	}
	for _, f := range result.Failures {
		r.Failures = append(r.Failures, Failure{Path: f.Path, Error: f.Err.Error()})
	}
	return r
}

// Write encodes result to w. Map keys come out sorted in both formats.
func Write(w io.Writer, result cdeps.ScanResult, format Format) error {
	r := FromResult(result)

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown format %q: %w", format, cdeps.ErrUsage)
	}
}
