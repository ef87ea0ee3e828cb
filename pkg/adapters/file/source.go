// Package file loads condition lists from YAML files on disk.
//
// A conditions file is either a bare list of condition mappings or a mapping
// with a top-level "conditions" key:
//
//	conditions:
//	  - label: low
//	    startVal: 0.3
//	    startValSd: 0.1
//	  - label: high
//	    startVal: 0.7
//	    startValSd: 0.1
//
// Unknown per-condition keys are preserved verbatim in Condition.Extra.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/perceptlab/staircase/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Source implements ports.ConditionSource against a directory of YAML files.
// A resource name resolves to "<root>/<name>.yaml" unless it already carries
// an extension, in which case it is used as a path relative to the root.
type Source struct {
	root string
}

// NewSource creates a source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{root: dir}
}

// Load resolves and parses the named conditions resource.
func (s *Source) Load(_ context.Context, resource string) ([]domain.Condition, error) {
	path := resource
	if filepath.Ext(path) == "" {
		path += ".yaml"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	return LoadFile(path)
}

// LoadFile parses a conditions file at an explicit path.
func LoadFile(path string) ([]domain.Condition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conditions file: %w", err)
	}
	conds, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conds, nil
}

// Parse decodes YAML condition data from memory.
func Parse(raw []byte) ([]domain.Condition, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	rows, err := conditionRows(doc)
	if err != nil {
		return nil, err
	}

	conditions := make([]domain.Condition, 0, len(rows))
	for i, row := range rows {
		var cond domain.Condition
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cond,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(row); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

// conditionRows accepts either a bare list or a {conditions: [...]} document.
func conditionRows(doc any) ([]map[string]any, error) {
	var list []any
	switch v := doc.(type) {
	case []any:
		list = v
	case map[string]any:
		inner, ok := v["conditions"]
		if !ok {
			return nil, fmt.Errorf("document has no \"conditions\" key")
		}
		list, ok = inner.([]any)
		if !ok {
			return nil, fmt.Errorf("\"conditions\" must be a list")
		}
	default:
		return nil, fmt.Errorf("document must be a list or a mapping, got %T", doc)
	}

	rows := make([]map[string]any, 0, len(list))
	for i, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("condition %d must be a mapping, got %T", i, item)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
