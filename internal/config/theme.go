package config

import (
	"fmt"
	"maps"

	"github.com/aretw0/tinct/pkg/color"
	"github.com/aretw0/tinct/pkg/template"
)

// Theme is a named palette plus free-form data.
//
//	name: gruvbox
//	palette:
//	  bg: "#282828"
//	  fg: "#ebdbb2"
//	font: { family: Iosevka, size: 12 }
type Theme struct {
	Name    string                 `mapstructure:"name"`
	Palette map[string]color.Color `mapstructure:"palette"`
	Extra   map[string]any         `mapstructure:",remain"`
}

// LoadTheme reads a theme file.
func LoadTheme(path string) (*Theme, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var th Theme
	if err := decode(raw, &th); err != nil {
		return nil, fmt.Errorf("failed to decode theme %s: %w", path, err)
	}
	return &th, nil
}

// Data returns the render data of the theme: the free-form keys, "name" and
// "palette", with overrides merged on top.
func (th *Theme) Data(overrides map[string]any) map[string]any {
	data := make(map[string]any, len(th.Extra)+len(overrides)+2)
	maps.Copy(data, th.Extra)

	palette := make(map[string]any, len(th.Palette))
	for name, c := range th.Palette {
		palette[name] = c
	}
	data["name"] = th.Name
	data["palette"] = palette

	Merge(data, overrides)
	return data
}

// Value converts Data to a template value tree.
func (th *Theme) Value(overrides map[string]any) (template.Value, error) {
	return template.FromAny(th.Data(overrides))
}

// Merge copies src into dst, descending into maps present on both sides.
func Merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merged := maps.Clone(existing)
				Merge(merged, sub)
				dst[k] = merged
				continue
			}
		}
		dst[k] = v
	}
}
