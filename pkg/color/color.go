// Package color provides the RGBA colour type used in themes. Color is a
// template.Formattable, so templates can render it through format strings
// such as "{rx}{gx}{bx}" or "rgba({r}, {g}, {b}, {af:.2f})".
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/tinct/pkg/template"
)

var (
	ErrMissingHash   = errors.New("color strings must start with '#'")
	ErrInvalidHex    = errors.New("not a valid hexadecimal number")
	ErrInvalidLength = errors.New("colors must have 3, 6 or 8 hex digits")
)

// ParseError describes a string that is not a colour.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid color %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Color is an 8-bit RGBA colour.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// Parse reads "#rgb", "#rrggbb" or "#rrggbbaa". Colours without an alpha
// component are opaque.
func Parse(s string) (Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Color{}, &ParseError{Input: s, Err: ErrMissingHash}
	}

	switch len(hex) {
	case 3, 6, 8:
	default:
		return Color{}, &ParseError{Input: s, Err: fmt.Errorf("%w (got %d)", ErrInvalidLength, len(hex))}
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, &ParseError{Input: s, Err: fmt.Errorf("%w: %q", ErrInvalidHex, hex)}
	}

	switch len(hex) {
	case 3:
		r, g, b := uint8(n>>8&0xf), uint8(n>>4&0xf), uint8(n&0xf)
		return RGB(r<<4|r, g<<4|g, b<<4|b), nil
	case 6:
		return RGB(uint8(n>>16), uint8(n>>8), uint8(n)), nil
	default:
		return Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
	}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the colour as "#rrggbbaa".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Hex returns the colour as "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luminance is the relative luminance of the colour in [0, 1], ignoring alpha.
func (c Color) Luminance() float64 {
	return 0.2126*channel(c.R) + 0.7152*channel(c.G) + 0.0722*channel(c.B)
}

// IsDark reports whether light text reads better than dark text on c.
func (c Color) IsDark() bool {
	return c.Luminance() < 0.179
}

func channel(v uint8) float64 {
	f := float64(v) / 255
	if f <= 0.03928 {
		return f / 12.92
	}
	return math.Pow((f+0.055)/1.055, 2.4)
}

func (Color) TypeName() string      { return "color" }
func (Color) DefaultFormat() string { return "#{rx}{gx}{bx}{ax}" }

// Placeholder resolves r, g, b, a (0-255), rx, gx, bx, ax (two hex digits)
// and rf, gf, bf, af (0-1).
func (c Color) Placeholder(name string) (any, bool) {
	var v uint8
	switch strings.TrimRight(name, "xf") {
	case "r":
		v = c.R
	case "g":
		v = c.G
	case "b":
		v = c.B
	case "a":
		v = c.A
	default:
		return nil, false
	}

	switch name[1:] {
	case "":
		return int(v), true
	case "x":
		return fmt.Sprintf("%02x", v), true
	case "f":
		return float64(v) / 255, true
	}
	return nil, false
}

// Value wraps c for use in a template data tree.
func (c Color) Value() template.Value {
	return template.Fmt(c)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalYAML accepts a scalar colour string. Unquoted "#..." values are
// comments in YAML, so theme files must quote them.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a color string", node.Line)
	}
	if err := c.UnmarshalText([]byte(node.Value)); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}
