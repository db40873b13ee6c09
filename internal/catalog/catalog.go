package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// DocumentType is one entry in the default document type catalog.
type DocumentType struct {
	Prefix      string `yaml:"prefix"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog is the default document type catalog shipped with the engine.
// Tenants start from these and administrators extend them per tenant.
type Catalog struct {
	DocumentTypes []DocumentType `yaml:"document_types"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	data, err := configFiles.ReadFile("config/document_types.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if len(c.DocumentTypes) == 0 {
		return nil, fmt.Errorf("embedded catalog is empty")
	}

	return &c, nil
}
