package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <template>",
	Short: "Export a template outline visualization",
	Long: `Parses a template and outputs a Mermaid diagram (graph TD) of its sections,
inserts and format overrides. With --theme, --data or --set, names the data
does not provide are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		theme, _ := cmd.Flags().GetString("theme")
		data, _ := cmd.Flags().GetString("data")
		set, _ := cmd.Flags().GetStringArray("set")

		return cli.RunGraph(cmd.Context(), cli.GraphOptions{
			Template: args[0],
			Dir:      dir,
			Theme:    theme,
			DataFile: data,
			Set:      set,
			Debug:    debugFlag(cmd),
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("theme", "", "Theme file used to highlight missing names")
	graphCmd.Flags().String("data", "", "YAML or JSON data file used to highlight missing names")
	graphCmd.Flags().StringArray("set", nil, "Set a value (key.path=value), repeatable")
}
