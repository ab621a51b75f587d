package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Variable pattern: {{ .vars.key }}, nested paths with dots.
var varPattern = regexp.MustCompile(`\{\{\s*\.vars\.([a-zA-Z0-9_.]+)\s*\}\}`)

// Env pattern: {{ env "NAME" }}.
var envPattern = regexp.MustCompile(`\{\{\s*env\s+"([A-Za-z_][A-Za-z0-9_]*)"\s*\}\}`)

// VariableSubstitutor replaces placeholders in document strings:
// {{ .vars.key }} reads the document's own vars map (nested paths with
// dots), {{ env "NAME" }} reads the process environment. Referencing a
// variable that does not exist is an error, never a silent pass-through.
type VariableSubstitutor struct {
	vars      map[string]any
	lookupEnv func(string) (string, bool)
}

// NewVariableSubstitutor creates a substitutor over the given vars map.
func NewVariableSubstitutor(vars map[string]any) *VariableSubstitutor {
	return &VariableSubstitutor{
		vars:      vars,
		lookupEnv: os.LookupEnv,
	}
}

// SubstituteDocument expands placeholders everywhere user values flow:
// the run filter, the selection lists, and every per-check variable
// section. Modifies the document in place.
func (s *VariableSubstitutor) SubstituteDocument(doc *Document) error {
	var err error

	doc.Run.Filter, err = s.substituteInString(doc.Run.Filter)
	if err != nil {
		return fmt.Errorf("run.filter: %w", err)
	}
	if err := s.substituteInSlice(doc.Run.ExplicitChecks); err != nil {
		return fmt.Errorf("run.explicit_checks: %w", err)
	}
	if err := s.substituteInSlice(doc.Run.ExcludeChecks); err != nil {
		return fmt.Errorf("run.exclude_checks: %w", err)
	}

	for id, section := range doc.Checks {
		if err := s.substituteInMap(section); err != nil {
			return fmt.Errorf("checks.%s: %w", id, err)
		}
	}
	return nil
}

func (s *VariableSubstitutor) substituteInSlice(items []string) error {
	for i, item := range items {
		substituted, err := s.substituteInString(item)
		if err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
		items[i] = substituted
	}
	return nil
}

// substituteInMap recursively expands placeholders in map values.
// Modifies the map in place; non-string leaves pass through untouched.
func (s *VariableSubstitutor) substituteInMap(m map[string]any) error {
	for key, value := range m {
		switch v := value.(type) {
		case string:
			substituted, err := s.substituteInString(v)
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			m[key] = substituted

		case map[string]any:
			if err := s.substituteInMap(v); err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}

		case []any:
			for i, elem := range v {
				switch e := elem.(type) {
				case string:
					substituted, err := s.substituteInString(e)
					if err != nil {
						return fmt.Errorf("key %s[%d]: %w", key, i, err)
					}
					v[i] = substituted
				case map[string]any:
					if err := s.substituteInMap(e); err != nil {
						return fmt.Errorf("key %s[%d]: %w", key, i, err)
					}
				}
			}
		}
	}
	return nil
}

// substituteInString expands both placeholder forms in str.
func (s *VariableSubstitutor) substituteInString(str string) (string, error) {
	var lastErr error

	result := varPattern.ReplaceAllStringFunc(str, func(match string) string {
		submatches := varPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid variable pattern: %s", match)
			return match
		}

		value, err := lookupVar(s.vars, submatches[1])
		if err != nil {
			lastErr = err
			return match
		}
		return fmt.Sprintf("%v", value)
	})
	if lastErr != nil {
		return "", lastErr
	}

	result = envPattern.ReplaceAllStringFunc(result, func(match string) string {
		submatches := envPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid env pattern: %s", match)
			return match
		}

		name := submatches[1]
		value, ok := s.lookupEnv(name)
		if !ok {
			lastErr = fmt.Errorf("env var %q is not set", name)
			return match
		}
		return value
	})
	if lastErr != nil {
		return "", lastErr
	}

	return result, nil
}

// lookupVar resolves a dot-separated path through the vars map.
func lookupVar(vars map[string]any, path string) (any, error) {
	parts := strings.Split(path, ".")
	current := any(vars)

	for i, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("variable path %s: %s is not a map", path, strings.Join(parts[:i], "."))
		}
		value, exists := m[part]
		if !exists {
			return nil, fmt.Errorf("variable not found: %s", path)
		}
		current = value
	}
	return current, nil
}
