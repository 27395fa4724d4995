package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type programCatalog struct {
	Programs []Program `yaml:"programs"`
}

// LoadPrograms reads the training program catalog. An empty path yields an empty catalog.
func LoadPrograms(path string) ([]Program, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read program catalog %s: %w", path, err)
	}
	return parsePrograms(data)
}

func parsePrograms(data []byte) ([]Program, error) {
	var catalog programCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("could not parse program catalog: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Programs))
	for i, p := range catalog.Programs {
		if p.Name == "" {
			return nil, fmt.Errorf("program %d has no program_name", i+1)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate program %q", p.Name)
		}
		seen[p.Name] = true
	}
	return catalog.Programs, nil
}
