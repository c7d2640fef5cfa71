package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/plando/engine/state"
	"github.com/nathoo/plando/types"
)

// InvalidFileError reports a distribution file that could not be decoded.
type InvalidFileError struct {
	Path   string
	Reason string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("invalid distribution file %s: %s", e.Path, e.Reason)
}

// LoadDocument decodes a distribution document from JSON or YAML, chosen by
// file extension.
func LoadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &InvalidFileError{Path: path, Reason: err.Error()}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &InvalidFileError{Path: path, Reason: err.Error()}
		}
	default:
		return nil, &InvalidFileError{Path: path, Reason: "unsupported file extension, expected .json, .yaml, or .yml"}
	}
	return doc, nil
}

// FromFile loads a document and builds a distribution from it.
func FromFile(settings *types.Settings, tables *state.Tables, search state.Search, path string) (*Distribution, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return New(settings, tables, search, doc)
}

// SaveDocument writes the rendered document, JSON or YAML by extension.
func (d *Distribution) SaveDocument(path string, includeOutput, spoiler bool) error {
	doc := d.ToDocument(includeOutput, spoiler)
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "    ")
	}
	if err != nil {
		return err
	}
	if data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return os.WriteFile(path, data, 0o644)
}

// stripOutputOnly removes every ':'-prefixed key, recursively.
func stripOutputOnly(v any) {
	switch node := v.(type) {
	case map[string]any:
		for key, value := range node {
			if strings.HasPrefix(key, ":") {
				delete(node, key)
				continue
			}
			stripOutputOnly(value)
		}
	case []any:
		for _, elem := range node {
			stripOutputOnly(elem)
		}
	}
}
