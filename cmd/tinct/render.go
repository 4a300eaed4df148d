package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
)

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a single template",
	Long: `Renders a template file, or a template by name from --dir, and writes the
result to stdout or to the file given with --output.

Data comes from a theme (--theme), a YAML or JSON file (--data) and --set
assignments, later sources winning.`,
	Example: `  tinct render alacritty.toml.tmpl --theme themes/gruvbox.yaml
  tinct render kitty --dir templates --set font.size=12 -o ~/.config/kitty/theme.conf
  tinct render waybar.css.tmpl --theme gruvbox.yaml --format 'color=rgb({r}, {g}, {b})'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") {
			dir = ""
		}
		theme, _ := cmd.Flags().GetString("theme")
		data, _ := cmd.Flags().GetString("data")
		set, _ := cmd.Flags().GetStringArray("set")
		formats, _ := cmd.Flags().GetStringArray("format")
		output, _ := cmd.Flags().GetString("output")

		return cli.RunRender(cmd.Context(), cli.RenderOptions{
			Template: args[0],
			Dir:      dir,
			Theme:    theme,
			DataFile: data,
			Set:      set,
			Formats:  formats,
			Output:   output,
			Debug:    debugFlag(cmd),
		}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("theme", "", "Theme file providing the palette and data")
	renderCmd.Flags().String("data", "", "YAML or JSON data file")
	renderCmd.Flags().StringArray("set", nil, "Set a value (key.path=value), repeatable")
	renderCmd.Flags().StringArray("format", nil, "Override a type's format (type=format), repeatable")
	renderCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
