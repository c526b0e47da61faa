package cli

import (
	"github.com/spf13/cobra"

	"arenad/internal/constants"
)

// createRootCommand creates the root command with global flags
func createRootCommand(configPath *string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "arena",
		Short: "Tournament management backend",
		Long: `arena serves a REST API for gaming groups, tournaments, stages, rosters,
participations and looking-for-players posts. Every list endpoint supports
filtering, sorting, pagination and projection shapes.`,
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to showing help if no subcommand
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(configPath, "config", "c", *configPath, "Config file (default is $XDG_CONFIG_HOME/arena/config.toml)")

	return rootCmd
}
