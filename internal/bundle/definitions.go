package bundle

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"basketwise/pkg/domain"
)

// definitionsFile is the YAML shape of an operator-supplied bundle file.
type definitionsFile struct {
	Bundles []struct {
		ID       string   `yaml:"id"`
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"bundles"`
}

// LoadDefinitions reads bundle definitions from a YAML file. An empty path
// returns the compiled-in default set.
func LoadDefinitions(path string) ([]Definition, error) {
	if path == "" {
		return DefaultDefinitions(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundles file: %w", err)
	}

	var file definitionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse bundles file: %w", err)
	}

	defs := make([]Definition, 0, len(file.Bundles))
	for _, b := range file.Bundles {
		if b.Name == "" || len(b.Keywords) == 0 {
			return nil, fmt.Errorf("bundle %q: name and keywords are required", b.Name)
		}
		id, err := uuid.Parse(b.ID)
		if err != nil {
			return nil, fmt.Errorf("bundle %q: invalid id: %w", b.Name, err)
		}
		defs = append(defs, Definition{
			ID:       domain.BundleID(id),
			Name:     b.Name,
			Keywords: b.Keywords,
		})
	}
	return defs, nil
}

func bid(s string) domain.BundleID { return domain.BundleID(uuid.MustParse(s)) }

// DefaultDefinitions is the bundled kit list used when no bundles file is
// configured.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:       bid("c2f0e7d4-3b5a-4c8e-9d1f-2a6b7c8d0001"),
			Name:     "Paneer Masala Night",
			Keywords: []string{"paneer", "masala", "onion", "tomato"},
		},
		{
			ID:       bid("c2f0e7d4-3b5a-4c8e-9d1f-2a6b7c8d0002"),
			Name:     "Breakfast Basics",
			Keywords: []string{"bread", "milk", "eggs", "butter"},
		},
		{
			ID:       bid("c2f0e7d4-3b5a-4c8e-9d1f-2a6b7c8d0003"),
			Name:     "Staples Refill",
			Keywords: []string{"atta", "rice"},
		},
	}
}
