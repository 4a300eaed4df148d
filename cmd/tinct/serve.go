package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/tinct/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP render server",
	Long: `Serves the templates over a JSON API:

  GET  /health
  GET  /templates
  POST /render                   {"template": "...", "data": {...}, "formats": {...}}
  POST /templates/{name}/render  {"data": {...}, "formats": {...}}
  GET  /events                   server-sent reload events
  GET  /metrics                  Prometheus metrics

Templates come from --dir, or from Redis when --redis is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunServe(cmd.Context(), serveOptions(cmd))
	},
}

func serveOptions(cmd *cobra.Command) cli.ServeOptions {
	dir, _ := cmd.Flags().GetString("dir")
	port, _ := cmd.Flags().GetInt("port")
	redisAddr, _ := cmd.Flags().GetString("redis")
	redisPrefix, _ := cmd.Flags().GetString("redis-prefix")
	return cli.ServeOptions{
		Dir:         dir,
		RedisAddr:   redisAddr,
		RedisPrefix: redisPrefix,
		Port:        port,
		Debug:       debugFlag(cmd),
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address (host:port) to load templates from")
	serveCmd.Flags().String("redis-prefix", "", "Redis key prefix (default tinct:templates:)")
}
