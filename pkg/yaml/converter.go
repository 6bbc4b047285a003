package yaml

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"m2b4a/pkg/template"
)

// UnmarshalYAML parses YAML bytes into the provided object. Unknown fields
// are rejected when strict is set.
func UnmarshalYAML(yamlBytes []byte, obj interface{}, strict bool) error {
	var opts []yaml.DecodeOption
	if strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(yamlBytes, obj, opts...); err != nil {
		return fmt.Errorf("error parsing YAML: %w", err)
	}
	return nil
}

// ReadFile parses the YAML file at path into obj, rejecting unknown fields.
// ${VAR} references are expanded from the environment first.
func ReadFile(path string, obj interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	expanded, err := template.Expand(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := UnmarshalYAML([]byte(expanded), obj, true); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// MarshalYAML renders obj as YAML.
func MarshalYAML(obj interface{}) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("error converting to YAML: %w", err)
	}
	return yamlBytes, nil
}
