package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseIndex validates data against the index schema and decodes it.
// Schema violations are returned as a *SchemaError.
func ParseIndex(data []byte) (*Index, error) {
	if err := check(ValidateIndex, "index", data); err != nil {
		return nil, err
	}
	return parseTyped[Index](data, "index")
}

// ParseLocal validates data against the mip.json schema and decodes it.
// source names the document in error messages.
func ParseLocal(data []byte, source string) (*LocalManifest, error) {
	if err := check(ValidateLocal, source, data); err != nil {
		return nil, err
	}
	return parseTyped[LocalManifest](data, source)
}

// ParseLocalFile reads and parses a mip.json file. A missing file is
// reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func ParseLocalFile(path string) (*LocalManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLocal(data, path)
}

// ReadLocalFile reads the mip.json of an installed package leniently. The
// file must hold a JSON object; every field of the expected type is kept even
// when another field is wrong. If the document violates the schema, the
// salvaged manifest is returned together with a *SchemaError.
func ReadLocalFile(path string) (*LocalManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := salvageLocal(data, path)
	if err != nil {
		return nil, err
	}
	if err := check(ValidateLocal, path, data); err != nil {
		return m, err
	}
	return m, nil
}

// salvageLocal decodes each mip.json field on its own, skipping fields and
// list items of the wrong type.
func salvageLocal(data []byte, source string) (*LocalManifest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	m := &LocalManifest{}
	if raw, ok := fields["package"]; ok {
		_ = json.Unmarshal(raw, &m.Package)
	}
	if raw, ok := fields["version"]; ok {
		_ = json.Unmarshal(raw, &m.Version)
	}
	m.Dependencies = stringItems(fields["dependencies"])
	m.ExposedSymbols = stringItems(fields["exposed_symbols"])
	return m, nil
}

// stringItems returns the non-empty strings of a JSON array, or nil if raw is
// not an array.
func stringItems(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func check(validate func([]byte) (*ValidationResult, error), source string, data []byte) error {
	result, err := validate(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	if !result.Valid {
		return &SchemaError{Source: source, Issues: result.Issues}
	}
	return nil
}

// parseTyped unmarshals JSON data into a typed manifest struct.
func parseTyped[T any](data []byte, source string) (*T, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	return &m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
