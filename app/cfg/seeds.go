package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is one feed definition from the startup seed file.
type Seed struct {
	URL          string   `yaml:"url"`
	Title        string   `yaml:"title"`
	Type         string   `yaml:"type"`
	Keywords     []string `yaml:"keywords"`
	ShowInTicker bool     `yaml:"show_in_ticker"`
	IconURL      string   `yaml:"icon_url"`
}

type seedFile struct {
	Feeds []Seed `yaml:"feeds"`
}

// LoadSeeds parses a YAML seed file. Every seed needs a URL; the type
// defaults to generic.
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range file.Feeds {
		if file.Feeds[i].URL == "" {
			return nil, fmt.Errorf("seed %d has no url", i)
		}
		if file.Feeds[i].Type == "" {
			file.Feeds[i].Type = "generic"
		}
	}

	return file.Feeds, nil
}
