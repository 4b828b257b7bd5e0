// Package configcmder provides the config command for managing persistent
// clipper configuration stored in the .clipper/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent clipper configuration.

Configuration is stored as config.toml in the .clipper/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  fetch.timeout_seconds, fetch.user_agent,
  chunking.size, chunking.overlap,
  retrieval.top_k, retrieval.parallelism,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model,
  vector_store.provider, vector_store.target,
  api.listen, client.api_target

Use subcommands to get, set, or list configuration values:
  clipper config set <key> <value>    Set a configuration value
  clipper config get <key>            Get a configuration value
  clipper config list                 List all configuration values
  clipper config preset <name>        Write a provider preset

Examples:
  clipper config set llm.model llama3.2
  clipper config set retrieval.top_k 3
  clipper config get embedding.model
  clipper config preset openai
  clipper config list`

const configShortDesc string = "Manage persistent clipper configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPresetCmd())

	return cmd
}
