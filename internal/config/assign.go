package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tinct/pkg/color"
)

// ParseAssignments turns "key=value" pairs into nested data. Dotted keys
// create nested maps ("font.size=12"). Values are read as YAML scalars, so
// numbers and booleans keep their type; "#..." values are parsed as colours.
func ParseAssignments(pairs []string) (map[string]any, error) {
	data := map[string]any{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", pair)
		}
		if err := setPath(data, strings.Split(key, "."), scalar(raw)); err != nil {
			return nil, fmt.Errorf("invalid assignment %q: %w", pair, err)
		}
	}
	return data, nil
}

func scalar(raw string) any {
	if strings.HasPrefix(raw, "#") {
		if c, err := color.Parse(raw); err == nil {
			return c
		}
		return raw
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	case nil:
		if raw == "" {
			return ""
		}
	}
	return v
}

func setPath(data map[string]any, path []string, value any) error {
	for i, segment := range path[:len(path)-1] {
		if segment == "" {
			return fmt.Errorf("empty key segment")
		}
		next, ok := data[segment].(map[string]any)
		if !ok {
			if _, exists := data[segment]; exists {
				return fmt.Errorf("%s is not a map", strings.Join(path[:i+1], "."))
			}
			next = map[string]any{}
			data[segment] = next
		}
		data = next
	}
	last := path[len(path)-1]
	if last == "" {
		return fmt.Errorf("empty key segment")
	}
	data[last] = value
	return nil
}
