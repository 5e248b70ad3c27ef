package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/repolens/internal/mcp"
	"github.com/blackwell-systems/repolens/internal/store"
)

var serveNoHistory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an MCP stdio server exposing the analyzer",
	Long: `Start a Model Context Protocol stdio server. The server exposes:

  analyze_repository_path  Full report and recommendations for a directory
  list_languages           The recognized extension table
  get_analysis_history     Recorded runs of a path and the latest change

Register it with an MCP client, for example:
  {"mcpServers":{"repolens":{"command":"repolens","args":["serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "Do not record runs or expose the history tool")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	var db *store.DB
	if !serveNoHistory {
		db, err = env.openStore()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
	}

	srv := mcp.NewServer(env.newEngine(nil, nil), mcp.Options{
		Version: appVersion,
		Logger:  env.log,
		DB:      db,
	})
	// stdout carries the protocol; diagnostics stay on stderr.
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
