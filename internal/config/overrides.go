package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fiber-ring-topology-ui/internal/dataset"
	"fiber-ring-topology-ui/internal/topology"
)

// Overrides is the optional YAML file named by APP_SCHEMA_FILE. Column
// aliases are tried before the built-in ones; styles replace the non-empty
// fields of the defaults.
//
//	columns:
//	  destination_id: ["Far End", "New Destenation"]
//	styles:
//	  DARK_FIBER: {color: "#101010"}
type Overrides struct {
	Columns dataset.Schema    `yaml:"columns"`
	Styles  topology.StyleMap `yaml:"styles"`
}

// LoadOverrides reads path. An empty path yields empty overrides.
func LoadOverrides(path string) (Overrides, error) {
	var out Overrides
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read schema file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse schema file %s: %w", path, err)
	}
	for field := range out.Columns {
		if !knownField(field) {
			return out, fmt.Errorf("schema file %s: unknown column field %q", path, field)
		}
	}
	for kind := range out.Styles {
		switch kind {
		case topology.KindP0, topology.KindP01, topology.KindDarkFiber, topology.KindUnclassified:
		default:
			return out, fmt.Errorf("schema file %s: unknown node kind %q", path, kind)
		}
	}
	return out, nil
}

// Schema returns the built-in column aliases with the overrides applied.
func (o Overrides) Schema() dataset.Schema {
	return dataset.DefaultSchema().Merge(o.Columns)
}

// StyleMap returns the built-in styles with the overrides applied.
func (o Overrides) StyleMap() topology.StyleMap {
	return topology.DefaultStyles().Merge(o.Styles)
}

func knownField(f dataset.Field) bool {
	for _, known := range dataset.AllFields {
		if f == known {
			return true
		}
	}
	return false
}
