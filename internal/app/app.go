package app

import (
	"context"

	"arenad/internal/cli"
)

// App represents the main application
type App struct {
	CLI *cli.Manager
}

// New creates a new application instance
func New() *App {
	return &App{CLI: cli.New()}
}

// Run starts the application
func (a *App) Run(args []string) error {
	return a.RunWithContext(context.Background(), args)
}

// RunWithContext runs the CLI with a context for cancellation. The serve
// command shuts the server down gracefully when ctx is cancelled.
func (a *App) RunWithContext(ctx context.Context, args []string) error {
	// Show help if no arguments provided
	if len(args) == 0 {
		return a.CLI.ExecuteWithContext(ctx, []string{"--help"})
	}
	return a.CLI.ExecuteWithContext(ctx, args)
}
