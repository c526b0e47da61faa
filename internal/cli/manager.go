package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"arenad/internal/cli/commands"
)

// Manager handles CLI operations
type Manager struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// New creates a new CLI manager writing command output to stdout
func New() *Manager {
	return NewWithEnv(commands.NewEnv())
}

// NewWithEnv creates a CLI manager around env
func NewWithEnv(env *commands.Env) *Manager {
	m := &Manager{env: env}
	m.rootCmd = createRootCommand(&env.ConfigPath)
	m.setupCommands()
	return m
}

// SetOutput redirects command and help output
func (m *Manager) SetOutput(w io.Writer) {
	m.env.Out = w
	m.rootCmd.SetOut(w)
	m.rootCmd.SetErr(w)
}

// Execute executes the CLI with the given arguments
func (m *Manager) Execute(args []string) error {
	return m.ExecuteWithContext(context.Background(), args)
}

// ExecuteWithContext executes the CLI with the given arguments and context.
// Resources opened by the command are released before it returns.
func (m *Manager) ExecuteWithContext(ctx context.Context, args []string) error {
	defer m.env.Close()

	m.rootCmd.SetArgs(args)
	return m.rootCmd.ExecuteContext(ctx)
}

// setupCommands sets up all CLI commands
func (m *Manager) setupCommands() {
	for _, cmd := range commands.ServerCommands(m.env) {
		m.rootCmd.AddCommand(cmd)
	}

	// Data commands are top-level: arena seed, arena query
	for _, cmd := range commands.DataCommands(m.env) {
		m.rootCmd.AddCommand(cmd)
	}

	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Schema migration commands",
		Aliases: []string{"db"},
	}
	for _, cmd := range commands.MigrateCommands(m.env) {
		migrateCmd.AddCommand(cmd)
	}
	m.rootCmd.AddCommand(migrateCmd)

	configCmd := &cobra.Command{
		Use:     "config",
		Short:   "Configuration management commands",
		Aliases: []string{"cfg"},
	}
	for _, cmd := range commands.ConfigCommands(m.env) {
		configCmd.AddCommand(cmd)
	}
	m.rootCmd.AddCommand(configCmd)
}
