package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tinct/pkg/color"
	"github.com/aretw0/tinct/pkg/template"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadProject_YAML(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "tinct.yaml", `
theme: themes/gruvbox.yaml
formats:
  color: "#{rx}{gx}{bx}"
max_depth: 8
data:
  font: { size: 11 }
outputs:
  - template: kitty.conf
    target: out/kitty.conf
  - template: waybar.css
    target: /tmp/waybar.css
    formats:
      color: "rgb({r}, {g}, {b})"
`)

	p, err := LoadProject(path)
	require.NoError(t, err)

	assert.Equal(t, "themes/gruvbox.yaml", p.Theme)
	assert.Equal(t, "templates", p.Templates)
	assert.Equal(t, 8, p.MaxDepth)
	assert.Equal(t, "#{rx}{gx}{bx}", p.Formats["color"])
	require.Len(t, p.Outputs, 2)
	assert.Equal(t, "rgb({r}, {g}, {b})", p.Outputs[1].Formats["color"])

	assert.Equal(t, filepath.Join(dir, "out/kitty.conf"), p.Resolve(p.Outputs[0].Target))
	assert.Equal(t, "/tmp/waybar.css", p.Resolve(p.Outputs[1].Target))
}

func TestLoadProject_JSON(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "tinct.json", `{"theme": "t.yaml", "templates": "tpl", "outputs": [{"template": "a", "target": "b"}]}`)

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "tpl", p.Templates)
	assert.Equal(t, []Output{{Template: "a", Target: "b"}}, p.Outputs)
}

func TestLoadProject_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProject(write(t, dir, "a.yaml", "outputs:\n  - template: x\n"))
	assert.ErrorContains(t, err, "missing target")

	_, err = LoadProject(write(t, dir, "b.yaml", "outputs: [unclosed"))
	assert.Error(t, err)

	_, err = LoadProject(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTheme(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "gruvbox.yaml", `
name: gruvbox
palette:
  bg: "#282828"
  fg: "#ebdbb2"
font:
  family: Iosevka
  size: 12
variant: dark
`)

	th, err := LoadTheme(path)
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", th.Name)
	assert.Equal(t, color.RGB(0x28, 0x28, 0x28), th.Palette["bg"])
	assert.Equal(t, "dark", th.Extra["variant"])

	v, err := th.Value(map[string]any{"font": map[string]any{"size": 14}})
	require.NoError(t, err)

	out, err := template.MustParse("{{name}} {{palette.bg}} {{font.family}} {{font.size}} {{variant}}").Render(v)
	require.NoError(t, err)
	assert.Equal(t, "gruvbox #282828ff Iosevka 14 dark", out)
}

func TestLoadTheme_BadColor(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTheme(write(t, dir, "bad.yaml", "palette:\n  bg: \"282828\"\n"))
	assert.ErrorContains(t, err, "must start with '#'")
}

func TestParseAssignments(t *testing.T) {
	data, err := ParseAssignments([]string{
		"name=nord",
		"font.size=12",
		"font.bold=true",
		"palette.accent=#88c0d0",
		"empty=",
	})
	require.NoError(t, err)

	assert.Equal(t, "nord", data["name"])
	assert.Equal(t, map[string]any{"size": 12, "bold": true}, data["font"])
	assert.Equal(t, map[string]any{"accent": color.RGB(0x88, 0xc0, 0xd0)}, data["palette"])
	assert.Equal(t, "", data["empty"])

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)

	_, err = ParseAssignments([]string{"a=1", "a.b=2"})
	assert.ErrorContains(t, err, "a is not a map")
}
