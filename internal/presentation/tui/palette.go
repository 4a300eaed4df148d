package tui

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/aretw0/tinct/pkg/color"
)

// PrintPalette prints one swatch per colour, sorted by name. On a terminal the
// swatch shows the colour itself with readable text on top.
func PrintPalette(w io.Writer, palette map[string]color.Color) {
	p := Profile(w)

	width := 0
	for name := range palette {
		width = max(width, len(name))
	}

	for _, name := range slices.Sorted(maps.Keys(palette)) {
		c := palette[name]
		swatch := p.String("        ").Background(p.Color(c.Hex()))

		text := "#000000"
		if c.IsDark() {
			text = "#ffffff"
		}
		hex := p.String(" " + c.String() + " ").
			Foreground(p.Color(text)).
			Background(p.Color(c.Hex()))

		fmt.Fprintf(w, "%-*s %s%s\n", width, name, swatch, hex)
	}
}
