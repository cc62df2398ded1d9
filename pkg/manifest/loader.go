package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a manifest from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json for
// JSON. If the extension is unrecognized, YAML is attempted first, then
// JSON. After parsing, defaults are applied and the manifest is validated.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a manifest from raw bytes.
//
// The path parameter is used for format detection and error messages; it may
// be empty, in which case YAML is tried first.
func LoadFromBytes(data []byte, path string) (*Manifest, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("manifest file is empty")
	}

	m, err := parse(data, path)
	if err != nil {
		return nil, err
	}

	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

func parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse YAML manifest: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse JSON manifest: %w", err)
		}
	default:
		if yerr := yaml.Unmarshal(data, &m); yerr != nil {
			if jerr := json.Unmarshal(data, &m); jerr != nil {
				return nil, fmt.Errorf("manifest is neither valid YAML (%v) nor JSON (%v)", yerr, jerr)
			}
		}
	}
	return &m, nil
}
