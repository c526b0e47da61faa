package commands

import (
	"fmt"
	"os"

	"arenad/internal/config"

	"github.com/spf13/cobra"
)

// ConfigCommands creates configuration management commands
func ConfigCommands(env *Env) []*cobra.Command {
	commands := []*cobra.Command{}

	// arena config init
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return initConfig(env, force)
		},
	}
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
	commands = append(commands, initCmd)

	// arena config show
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  `Show the configuration after defaults and ARENA_* environment overrides are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.Config()
			if err != nil {
				return err
			}
			return printTOML(env.Out, cfg)
		},
	}
	commands = append(commands, showCmd)

	// arena config validate [config-file]
	validateCmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := env.ResolvedConfigPath()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				path = args[0]
			}
			return validateConfig(env, path)
		},
	}
	commands = append(commands, validateCmd)

	// arena config path
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := env.ResolvedConfigPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(env.Out, path)
			return err
		},
	}
	commands = append(commands, pathCmd)

	return commands
}

func initConfig(env *Env, force bool) error {
	path, err := env.ResolvedConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
	}

	if err := config.DefaultGlobalConfig().Save(path); err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.Out, "Wrote default configuration to %s\n", path)
	return err
}

func validateConfig(env *Env, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("configuration file not found: %s", path)
	}

	cfg, err := config.LoadGlobalConfigFrom(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	_, err = fmt.Fprintf(env.Out, "%s is valid\n", path)
	return err
}
