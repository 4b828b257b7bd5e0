// Package clippercmder assembles the clipper root command.
package clippercmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/clipperhq/clipper/cmd/clipper/ask"
	configcmder "github.com/clipperhq/clipper/cmd/clipper/config"
	researchcmder "github.com/clipperhq/clipper/cmd/clipper/research"
	servecmder "github.com/clipperhq/clipper/cmd/clipper/serve"
)

const clipperLongDesc string = `Clipper is a research tool for web articles.

Give it article URLs and it builds an in-memory knowledge base you can
question. Answers stream token by token, grounded in the ingested
articles and cited back to their source URLs.

  clipper research <url> [<url> ...]   Ingest articles and ask questions
  clipper serve                        Run the HTTP API and MCP server
  clipper ask <question>               Query a running clipper server
  clipper config                       Manage persistent configuration`

const clipperShortDesc string = "Clipper - article research with cited answers"

func NewClipperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipper",
		Short: clipperShortDesc,
		Long:  clipperLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml (default: ./.clipper or ~/.clipper)")

	// Add subcommands
	cmd.AddCommand(researchcmder.NewResearchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
