// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// ResultFile is the on-disk representation of a completed search. A survey
// run can be saved and reloaded later without re-querying any backend.
type ResultFile struct {
	Query   string                `yaml:"query"`
	Intent  types.SearchIntent    `yaml:"intent"`
	Stats   types.CombinedStats   `yaml:"stats"`
	Results []types.PaperMetadata `yaml:"results"`
	SavedAt time.Time             `yaml:"saved_at"`
}

// WriteResultFile saves a search response to a YAML file.
func WriteResultFile(path string, resp types.SearchResponse) error {
	rf := ResultFile{
		Query:   resp.Query,
		Intent:  resp.NormalizedIntent,
		Stats:   resp.Stats,
		Results: resp.Results,
		SavedAt: time.Now(),
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved search from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
