package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tutorforge/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing conversions and the knowledge base.

Endpoints:
  POST /api/convert            convert a document (JSON body)
  GET  /api/knowledge?q=&k=    query the knowledge base
  POST /api/knowledge/index    index the knowledge folder
  GET  /api/styles             list the audiences
  GET  /artifacts/{name}       download generated files`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "127.0.0.1:8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Convert:     rt.Convert,
		Knowledge:   rt.Knowledge,
		ArtifactDir: rt.OutputDir,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://%s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
