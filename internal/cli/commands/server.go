package commands

import (
	"context"
	"fmt"

	"arenad/internal/logger"
	"arenad/internal/server"
	"arenad/internal/validation"

	"github.com/spf13/cobra"
)

// ServerCommands creates the serve command
func ServerCommands(env *Env) []*cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Arena API server",
		Long: `Start the Arena HTTP API server. The server exposes every resource under
/api, a health probe at /health, Prometheus metrics at /metrics and API
documentation at /swagger/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")
			host, _ := cmd.Flags().GetString("host")
			return startServer(cmd.Context(), env, host, port)
		},
	}

	serveCmd.Flags().IntP("port", "p", 0, "Port to run the server on (default from config)")
	serveCmd.Flags().String("host", "", "Address to bind (default from config)")

	return []*cobra.Command{serveCmd}
}

// startServer opens the database and serves until ctx is cancelled
func startServer(ctx context.Context, env *Env, host string, port int) error {
	cfg, err := env.Config()
	if err != nil {
		return err
	}
	if port != 0 {
		if err := validation.PortNumber(port); err != nil {
			return err
		}
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	repos, err := env.Repositories()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	database, err := env.Database()
	if err != nil {
		return err
	}

	srv := server.New(server.ConfigFromGlobal(cfg), repos, database, env.Metrics())

	logger.WithFields(logger.Fields{
		"host":      cfg.Server.Host,
		"port":      cfg.Server.Port,
		"driver":    cfg.Database.Driver,
		"operation": "server_start",
	}).Info("Starting Arena server")
	return srv.Start(ctx)
}
