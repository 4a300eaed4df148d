package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
	"github.com/aretw0/tinct/internal/config"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Render every output of a project",
	Long: `Reads the project file, renders each output with the theme data and writes
the targets atomically. A failing output is reported and skipped; the others
are still written. With --watch the project is applied again whenever a
template changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		watch, _ := cmd.Flags().GetBool("watch")
		set, _ := cmd.Flags().GetStringArray("set")

		return cli.RunApply(cmd.Context(), cli.ApplyOptions{
			Project: project,
			Set:     set,
			DryRun:  dryRun,
			Watch:   watch,
			Debug:   debugFlag(cmd),
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringP("project", "p", config.DefaultProjectFile, "Project file")
	applyCmd.Flags().Bool("dry-run", false, "Render but do not write")
	applyCmd.Flags().BoolP("watch", "w", false, "Re-apply when templates change")
	applyCmd.Flags().StringArray("set", nil, "Set a value (key.path=value), repeatable")
}
