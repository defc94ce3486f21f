package formdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a form definition from a JSON or YAML file. YAML
// content is converted to JSON before decoding so both formats share
// one set of field tags.
func LoadFile(path string) (*FormDefinition, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from caller
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Load(data, path)
}

// Load decodes a form definition from raw bytes. The path hints at the
// format via its extension; without a known extension, valid JSON is
// tried first and YAML second.
func Load(data []byte, path string) (*FormDefinition, error) {
	jsonData, err := toJSON(data, path)
	if err != nil {
		return nil, err
	}
	var fd FormDefinition
	if err := json.Unmarshal(jsonData, &fd); err != nil {
		return nil, fmt.Errorf("parsing form definition: %w", err)
	}
	return &fd, nil
}

func toJSON(data []byte, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return data, nil
	case ".yaml", ".yml":
		return yamlToJSON(data)
	}
	if json.Valid(data) {
		return data, nil
	}
	return yamlToJSON(data)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting YAML to JSON: %w", err)
	}
	return out, nil
}
