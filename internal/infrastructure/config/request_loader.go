// Package config provides infrastructure for loading request and profile files.
// This package handles YAML and HCL parsing, file I/O, request inheritance and
// variable substitution.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// ExtendsKey is the request field naming parent request files.
const ExtendsKey = "extends"

// Request file formats.
const (
	FormatYAML = "yaml"
	FormatHCL  = "hcl"
)

// RequestLoader handles loading request documents with inheritance support.
//
// Inheritance Resolution:
//   - Requests can name parent requests via the `extends` field
//   - Parents are loaded recursively and deep-merged left-to-right,
//     the extending request last
//   - Circular inheritance is detected and rejected
//   - Relative paths are resolved from the extending request's directory
//
// Variables are substituted once, after the whole chain is merged.
type RequestLoader struct {
	substitutor *VariableSubstitutor
}

// NewRequestLoader creates a new request loader.
func NewRequestLoader() *RequestLoader {
	return &RequestLoader{substitutor: NewVariableSubstitutor(nil)}
}

// LoadRequest loads a request, resolves inheritance and substitutes variables.
func (l *RequestLoader) LoadRequest(path string) (map[string]any, error) {
	doc, err := l.loadRecursive(path, make(map[string]bool))
	if err != nil {
		return nil, err
	}
	if err := l.substitutor.Substitute(doc); err != nil {
		return nil, fmt.Errorf("variable substitution failed: %w", err)
	}
	return doc, nil
}

func (l *RequestLoader) loadRecursive(path string, visited map[string]bool) (map[string]any, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}

	if visited[absPath] {
		return nil, fmt.Errorf("circular inheritance detected: %s", absPath)
	}
	visited[absPath] = true
	defer delete(visited, absPath)

	current, err := l.loadSingle(absPath)
	if err != nil {
		return nil, err
	}

	parents, err := extendsList(current[ExtendsKey])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	delete(current, ExtendsKey)
	if len(parents) == 0 {
		return current, nil
	}

	merged := map[string]any{}
	for _, parentPath := range parents {
		parent, err := l.loadRecursive(resolveRelativePath(absPath, parentPath), visited)
		if err != nil {
			return nil, fmt.Errorf("loading parent %q: %w", parentPath, err)
		}
		merged = MergeDocuments(merged, parent)
	}
	return MergeDocuments(merged, current), nil
}

// loadSingle loads one request file without resolving inheritance.
func (l *RequestLoader) loadSingle(path string) (map[string]any, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open request directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open request: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return LoadRequestFromReader(file, FormatOf(path), path)
}

// FormatOf picks the request format from the file extension.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return FormatHCL
	}
	return FormatYAML
}

// LoadRequestFromReader parses a single request document.
// Note: This does NOT resolve inheritance or variables.
func LoadRequestFromReader(r io.Reader, format, filename string) (map[string]any, error) {
	switch format {
	case FormatHCL:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read request: %w", err)
		}
		return DecodeHCL(data, filename)
	case FormatYAML, "":
		doc := map[string]any{}
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if err == io.EOF {
				return doc, nil
			}
			return nil, fmt.Errorf("failed to decode request YAML: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported request format: %s", format)
	}
}

func extendsList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s entries must be strings, got %T", ExtendsKey, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or a list, got %T", ExtendsKey, v)
	}
}

// resolveRelativePath resolves a path relative to the current request's directory.
// If extendsPath is absolute, it is returned as-is.
func resolveRelativePath(currentPath, extendsPath string) string {
	if filepath.IsAbs(extendsPath) {
		return extendsPath
	}
	return filepath.Join(filepath.Dir(currentPath), extendsPath)
}

// MergeDocuments returns base with overlay applied on top. Nested maps are
// merged key by key; every other value, lists included, is replaced.
// Neither input is modified.
func MergeDocuments(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if om, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = MergeDocuments(bm, om)
				continue
			}
		}
		out[k] = v
	}
	return out
}
