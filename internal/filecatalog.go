package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileCatalog is a DescriptorProvider backed by a YAML file mapping plugin
// URIs to parameter tables. It serves offline use and test fixtures.
// The symbol field is what references are matched on; label is only shown
// in reports:
//
//	http://example.org/amp:
//	  - {index: 0, symbol: gain, label: Gain}
//	  - {index: 1, symbol: freq, label: Freq}
type FileCatalog struct {
	tables map[string]ParameterTable
}

// LoadFileCatalog reads and parses a YAML catalog file.
func LoadFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog: %w", err)
	}
	return ParseFileCatalog(data)
}

// ParseFileCatalog parses YAML catalog contents.
func ParseFileCatalog(data []byte) (*FileCatalog, error) {
	tables := make(map[string]ParameterTable)
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("could not parse catalog: %w", err)
	}
	return &FileCatalog{tables: tables}, nil
}

// Lookup returns the catalog entry for uri.
func (c *FileCatalog) Lookup(uri string) (ParameterTable, error) {
	table, ok := c.tables[uri]
	if !ok {
		return nil, &CatalogError{URI: uri, Err: ErrPluginNotFound}
	}
	return table, nil
}
