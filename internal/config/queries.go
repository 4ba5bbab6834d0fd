package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SavedQuery is a named, reusable tool call kept in the queries file. The
// arguments are stored as loose YAML and validated at call time like any
// other input.
type SavedQuery struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Tool        string         `yaml:"tool"`
	Arguments   map[string]any `yaml:"arguments,omitempty"`
}

type queriesFile struct {
	Queries []SavedQuery `yaml:"queries"`
}

// LoadQueries reads the saved queries from path. A missing file is not an
// error; it just means no queries have been saved yet.
func LoadQueries(path string) ([]SavedQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f queriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, q := range f.Queries {
		if q.Name == "" {
			return nil, fmt.Errorf("parsing %s: query %d has no name", path, i)
		}
		if q.Tool == "" {
			return nil, fmt.Errorf("parsing %s: query %q has no tool", path, q.Name)
		}
	}
	return f.Queries, nil
}

// FindQuery returns the saved query with the given name.
func FindQuery(queries []SavedQuery, name string) (SavedQuery, bool) {
	for _, q := range queries {
		if q.Name == name {
			return q, true
		}
	}
	return SavedQuery{}, false
}
