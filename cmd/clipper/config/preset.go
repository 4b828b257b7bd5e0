package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipperhq/clipper/pkg/cliui"
	"github.com/clipperhq/clipper/pkg/config"
)

const presetLongDesc string = `Write a provider preset to the config file.

A preset replaces the current config.toml with known-good settings for a
provider stack. Individual keys can still be changed afterwards with
"clipper config set".

Available presets:
  ollama    Local Ollama for embeddings and chat (the default stack)
  openai    OpenAI embeddings and chat (requires api_key keys to be set)

Examples:
  clipper config preset ollama
  clipper config preset openai`

const presetShortDesc string = "Write a provider preset"

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset <name>",
		Short: presetShortDesc,
		Long:  presetLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runPreset(args[0], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runPreset(name, configDir string) error {
	cfg, err := config.PresetConfig(name)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  %s Wrote %s preset to %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(name),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
