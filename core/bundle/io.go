package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatFromPath returns "yaml" or "json" based on the file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported bundle format: %s", ext)
	}
}

// ReadFile decodes the bundle file at path without building it.
func ReadFile(path string) (File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return File{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f, format)
}

// Load reads and builds the bundle at path.
func Load(path string) (*Model, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	return m, nil
}

// Decode reads a bundle document in the given format ("yaml" or "json").
func Decode(r io.Reader, format string) (File, error) {
	var f File
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&f); err != nil {
			return f, err
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return f, err
		}
	default:
		return f, fmt.Errorf("unsupported format: %s", format)
	}
	return f, nil
}

// Encode writes f in the given format.
func Encode(w io.Writer, format string, f File) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Save writes f to path, choosing the format from the extension.
func Save(path string, f File) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, format, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
