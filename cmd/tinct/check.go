package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
)

var checkCmd = &cobra.Command{
	Use:   "check [template...]",
	Short: "Check templates for syntax errors",
	Long:  `Parses each template (files, or names in --dir) and reports every syntax error with its position. Without arguments every template in --dir is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")

		return cli.RunCheck(cmd.Context(), cli.CheckOptions{
			Templates: args,
			Dir:       dir,
			MaxDepth:  maxDepth,
			Debug:     debugFlag(cmd),
		}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Int("max-depth", 0, "Maximum section nesting (0 keeps the default)")
}
