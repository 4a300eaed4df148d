// Package config loads tinct project and theme files.
//
// Files are YAML (default) or JSON, chosen by extension. They are read into a
// generic map first and decoded with mapstructure, so unknown keys of a theme
// flow through to templates as free-form data.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultProjectFile is looked up in the working directory when no project is given.
const DefaultProjectFile = "tinct.yaml"

// Project represents the structure of tinct.yaml.
type Project struct {
	// Theme is the path of the theme file, relative to the project file.
	Theme string `mapstructure:"theme"`
	// Templates is the template directory, relative to the project file.
	Templates string `mapstructure:"templates"`
	// Formats are engine-wide format overrides, keyed by type name.
	Formats map[string]string `mapstructure:"formats"`
	// Data is merged over the theme data.
	Data map[string]any `mapstructure:"data"`
	// MaxDepth limits section nesting; 0 keeps the default.
	MaxDepth int      `mapstructure:"max_depth"`
	Outputs  []Output `mapstructure:"outputs"`

	// Dir is the directory of the project file. Relative paths resolve against it.
	Dir string `mapstructure:"-"`
}

// Output renders one template into one file.
type Output struct {
	Template string `mapstructure:"template"`
	Target   string `mapstructure:"target"`
	// Formats override the project formats for this output only.
	Formats map[string]string `mapstructure:"formats"`
}

// LoadProject reads a project file.
func LoadProject(path string) (*Project, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var p Project
	if err := decode(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", path, err)
	}

	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	p.Dir = absDir
	if p.Templates == "" {
		p.Templates = "templates"
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks that every output names a template and a target.
func (p *Project) Validate() error {
	for i, out := range p.Outputs {
		if out.Template == "" {
			return fmt.Errorf("outputs[%d]: missing template", i)
		}
		if out.Target == "" {
			return fmt.Errorf("outputs[%d] (%s): missing target", i, out.Template)
		}
	}
	return nil
}

// Resolve returns path relative to the project directory. Absolute paths and
// paths starting with "~/" are expanded but otherwise kept.
func (p *Project) Resolve(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// readFile reads a YAML or JSON document into a generic map.
func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := map[string]any{}
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return raw, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
		),
		ErrorUnused: false,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// LoadData reads a YAML or JSON data file for rendering.
func LoadData(path string) (map[string]any, error) {
	return readFile(path)
}
