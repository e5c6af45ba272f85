package specialization

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedEntry is one catalog entry in a seed file.
type SeedEntry struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// seedFile is the on-disk layout:
//
//	specializations:
//	  - name: Life Coaching
//	    description: ...
type seedFile struct {
	Specializations []SeedEntry `yaml:"specializations"`
}

// ParseSeed decodes a YAML catalog.
func ParseSeed(r io.Reader) ([]SeedEntry, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse specialization seed: %w", err)
	}
	return f.Specializations, nil
}

// LoadSeedFile reads and parses a YAML catalog from disk.
func LoadSeedFile(path string) ([]SeedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file %s: %w", path, err)
	}
	defer f.Close()
	return ParseSeed(f)
}
