package cmd

import (
	"fmt"

	"github.com/grovetools/pybuild/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect pybuild configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSchemaCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration and the files it came from",
		Long: `Shows the configuration after merging, in order:
1. Global config (~/.config/pybuild/pybuild.yml)
2. Project config (pybuild.yml, searched upward from the working directory)
3. Override files (pybuild.override.yml)
Flags such as --verbose are already applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := runtimeFrom(cmd).Config
			out := cmd.OutOrStdout()

			if len(cfg.Sources) == 0 {
				fmt.Fprintln(out, "# Source: built-in defaults")
			}
			for _, src := range cfg.Sources {
				fmt.Fprintf(out, "# Source: %s\n", src)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for pybuild.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
