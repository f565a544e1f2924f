package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// VarsKey is the request field holding substitution variables.
const VarsKey = "vars"

// Variable pattern: {{ .vars.key }}
var varPattern = regexp.MustCompile(`\{\{\s*\.vars\.([a-zA-Z0-9_.]+)\s*\}\}`)

// Environment pattern: {{ env "NAME" }}
var envPattern = regexp.MustCompile(`\{\{\s*env\s+"([a-zA-Z0-9_]+)"\s*\}\}`)

// VariableSubstitutor performs variable substitution in request documents.
type VariableSubstitutor struct {
	lookupEnv func(string) (string, bool)
}

// NewVariableSubstitutor creates a new variable substitutor. A nil lookup
// reads the process environment.
func NewVariableSubstitutor(lookupEnv func(string) (string, bool)) *VariableSubstitutor {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &VariableSubstitutor{lookupEnv: lookupEnv}
}

// Substitute replaces {{ .vars.key }} and {{ env "NAME" }} patterns in every
// string of doc, using the document's own vars map, then removes vars.
// A string that consists of a single variable reference takes the variable's
// value with its type, so "{{ .vars.ecut }}" can yield a number.
// Substituted values are not re-evaluated. Modifies doc in place.
func (s *VariableSubstitutor) Substitute(doc map[string]any) error {
	vars := map[string]any{}
	if raw, ok := doc[VarsKey]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s must be a map, got %T", VarsKey, raw)
		}
		vars = m
	}
	delete(doc, VarsKey)
	return s.substituteInMap(doc, vars)
}

// substituteValue returns v with every pattern replaced.
func (s *VariableSubstitutor) substituteValue(v any, vars map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return s.substituteInString(val, vars)
	case map[string]any:
		if err := s.substituteInMap(val, vars); err != nil {
			return nil, err
		}
		return val, nil
	case []any:
		for i, elem := range val {
			sub, err := s.substituteValue(elem, vars)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			val[i] = sub
		}
		return val, nil
	default:
		// Other types (int, bool, etc.) don't need substitution
		return v, nil
	}
}

// substituteInMap recursively substitutes variables in map values.
func (s *VariableSubstitutor) substituteInMap(m map[string]any, vars map[string]any) error {
	for key, value := range m {
		sub, err := s.substituteValue(value, vars)
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		m[key] = sub
	}
	return nil
}

// substituteInString replaces patterns with values.
func (s *VariableSubstitutor) substituteInString(str string, vars map[string]any) (any, error) {
	// Whole-value reference keeps the variable's type.
	if loc := varPattern.FindStringSubmatchIndex(str); loc != nil && loc[0] == 0 && loc[1] == len(str) {
		return lookupVar(vars, str[loc[2]:loc[3]])
	}

	var lastErr error

	// 1. Substitute variables: {{ .vars.key }}
	result := varPattern.ReplaceAllStringFunc(str, func(match string) string {
		submatches := varPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid variable pattern: %s", match)
			return match
		}

		value, err := lookupVar(vars, submatches[1])
		if err != nil {
			lastErr = err
			return match
		}
		return fmt.Sprintf("%v", value)
	})
	if lastErr != nil {
		return nil, lastErr
	}

	// 2. Substitute environment: {{ env "NAME" }}
	result = envPattern.ReplaceAllStringFunc(result, func(match string) string {
		submatches := envPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid env pattern: %s", match)
			return match
		}
		value, ok := s.lookupEnv(submatches[1])
		if !ok {
			lastErr = fmt.Errorf("environment variable not set: %s", submatches[1])
			return match
		}
		return value
	})
	if lastErr != nil {
		return nil, lastErr
	}

	return result, nil
}

// lookupVar looks up a variable value by path (e.g., "scan.ecut").
// Supports nested paths using dot notation.
func lookupVar(vars map[string]any, path string) (any, error) {
	parts := strings.Split(path, ".")
	current := any(vars)

	for i, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("variable path %s: cannot access %s (not a map)", path, strings.Join(parts[:i+1], "."))
		}

		value, exists := m[part]
		if !exists {
			return nil, fmt.Errorf("variable not found: %s", path)
		}
		current = value
	}
	return current, nil
}
