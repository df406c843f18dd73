package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileValue is one flag assignment read from a config file.
type FileValue struct {
	Flag   string
	Values []string
}

// LoadFile reads a YAML config file whose top-level keys are flag names,
// e.g.
//
//	threads: 30
//	extensions: [php, html]
//	headers:
//	  - "X-Token: abc"
//
// Scalars yield one value, sequences one value per item. The result is
// sorted by flag name so callers apply it deterministically.
func LoadFile(path string) ([]FileValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	out := make([]FileValue, 0, len(raw))
	for key, node := range raw {
		var values []string
		switch node.Kind {
		case yaml.ScalarNode:
			values = []string{node.Value}
		case yaml.SequenceNode:
			for _, item := range node.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("config %s: %s: nested values are not supported (line %d)", path, key, item.Line)
				}
				values = append(values, item.Value)
			}
		default:
			return nil, fmt.Errorf("config %s: %s: expected a scalar or a list (line %d)", path, key, node.Line)
		}
		out = append(out, FileValue{Flag: strings.TrimSpace(key), Values: values})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Flag < out[j].Flag })
	return out, nil
}
