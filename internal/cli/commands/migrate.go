package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCommands creates the schema migration commands
func MigrateCommands(env *Env) []*cobra.Command {
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := env.Database()
			if err != nil {
				return err
			}
			if err := database.Migrate(); err != nil {
				return err
			}
			return printVersion(env)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long:  `Roll back the given number of migrations. --steps 0 rolls back everything.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			database, err := env.Database()
			if err != nil {
				return err
			}
			if err := database.MigrateDown(steps); err != nil {
				return err
			}
			return printVersion(env)
		},
	}
	downCmd.Flags().IntP("steps", "n", 1, "Number of migrations to roll back (0 for all)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(env)
		},
	}

	return []*cobra.Command{upCmd, downCmd, versionCmd}
}

func printVersion(env *Env) error {
	database, err := env.Database()
	if err != nil {
		return err
	}
	info, err := database.GetCurrentVersion()
	if err != nil {
		return err
	}

	state := "clean"
	if info.Dirty {
		state = "dirty"
	}
	_, err = fmt.Fprintf(env.Out, "Schema version: %d (%s)\n", info.Version, state)
	return err
}
