package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
)

var paletteCmd = &cobra.Command{
	Use:   "palette <theme>",
	Short: "Show the colours of a theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunPalette(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}
