package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/tinct/internal/config"
	"github.com/aretw0/tinct/internal/presentation/tui"
)

// RunPalette prints the colours of a theme file.
func RunPalette(themePath string, w io.Writer) error {
	th, err := config.LoadTheme(themePath)
	if err != nil {
		return err
	}
	if th.Name != "" {
		fmt.Fprintf(w, "%s\n\n", th.Name)
	}
	if len(th.Palette) == 0 {
		return fmt.Errorf("theme %s has no palette", themePath)
	}
	tui.PrintPalette(w, th.Palette)
	return nil
}
