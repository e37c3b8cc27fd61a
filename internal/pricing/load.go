package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	BudgetBands []string      `yaml:"budget_bands"`
	Types       []ProjectType `yaml:"types"`
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	budgets := f.BudgetBands
	if len(budgets) == 0 {
		budgets = DefaultBudgetBands
	}
	return NewCatalog(f.Types, budgets)
}

// LoadCatalog reads the YAML catalog at path. An empty path returns the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}
