package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a rules YAML file and merges it over the defaults.
type Loader struct {
	filePath string
}

// NewLoader creates a rules loader. An empty path yields the defaults.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load returns the effective rules.
func (l *Loader) Load() (*Rules, error) {
	r := Default()
	if l.filePath == "" {
		return r, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}

	if err := r.Merge(f); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", l.filePath, err)
	}
	return r, nil
}
