package tui

import (
	"fmt"
	"io"
)

// PrintBanner outputs the Tinct banner with the version.
func PrintBanner(w io.Writer, version string) {
	p := Profile(w)
	// A warm gradient, one colour per line
	lines := []struct{ text, color string }{
		{"  _   _            _   ", "#f59e0b"},
		{" | |_(_)_ __   ___| |_ ", "#f97316"},
		{" | __| | '_ \\ / __| __|", "#ef4444"},
		{" | |_| | | | | (__| |_ ", "#ec4899"},
		{"  \\__|_|_| |_|\\___|\\__|", "#a855f7"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  "+version).Faint())
	fmt.Fprintln(w)
}
