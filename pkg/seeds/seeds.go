// Package seeds loads the FAIR Data Points that every new session starts with.
package seeds

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
)

// Seed is one configured FDP. An index seed is expanded into the FDPs it links to.
type Seed struct {
	URI   string `yaml:"uri" json:"uri"`
	Index bool   `yaml:"index,omitempty" json:"index,omitempty"`
}

// Load reads a YAML list of seeds from path. An empty path yields no seeds.
func Load(path string) ([]Seed, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML list of seeds. Duplicate URIs (after
// trailing-slash normalization) keep their first occurrence.
func Parse(data []byte) ([]Seed, error) {
	var raw []Seed
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]Seed, 0, len(raw))
	for i, s := range raw {
		s.URI = strings.TrimRight(strings.TrimSpace(s.URI), "/")
		if err := validateURI(s.URI); err != nil {
			return nil, fmt.Errorf("seed %d: %w", i+1, err)
		}
		if seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		out = append(out, s)
	}
	return out, nil
}

// Merge concatenates seed lists, keeping the first occurrence of each URI.
func Merge(lists ...[]Seed) []Seed {
	return lo.UniqBy(lo.Flatten(lists), func(s Seed) string { return s.URI })
}

// URIs returns the seed URIs in file order.
func URIs(seeds []Seed) []string {
	uris := make([]string, len(seeds))
	for i, s := range seeds {
		uris[i] = s.URI
	}
	return uris
}

func validateURI(uri string) error {
	if uri == "" {
		return errors.New("uri is required")
	}
	return fdp.ValidateURI(uri)
}
