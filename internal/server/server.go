package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"arenad/internal/config"
	"arenad/internal/constants"
	"arenad/internal/interfaces"
	"arenad/internal/logger"
	"arenad/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds the server configuration
type Config struct {
	// Server settings
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	RequestTimeout  time.Duration `toml:"request_timeout"`

	// CORS settings
	AllowOrigins []string `toml:"allow_origins"`
	AllowHeaders []string `toml:"allow_headers"`

	// MaxPageSize bounds the pageSize of list requests
	MaxPageSize int `toml:"max_page_size"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            constants.DefaultServerPort,
		ReadTimeout:     constants.DefaultServerReadTimeout,
		WriteTimeout:    constants.DefaultServerWriteTimeout,
		ShutdownTimeout: constants.DefaultServerShutdownTimeout,
		RequestTimeout:  constants.DefaultRequestTimeout,
		AllowOrigins:    []string{"*"},
		AllowHeaders:    []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		MaxPageSize:     constants.MaxPageSize,
	}
}

// ConfigFromGlobal derives the server configuration from the global config
func ConfigFromGlobal(g *config.GlobalConfig) *Config {
	cfg := DefaultConfig()
	if g == nil {
		return cfg
	}

	cfg.Host = g.Server.Host
	cfg.Port = g.Server.Port
	if g.Server.ReadTimeout > 0 {
		cfg.ReadTimeout = g.Server.ReadTimeout
	}
	if g.Server.WriteTimeout > 0 {
		cfg.WriteTimeout = g.Server.WriteTimeout
	}
	if g.Server.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = g.Server.ShutdownTimeout
	}
	if len(g.Server.AllowOrigins) > 0 {
		cfg.AllowOrigins = g.Server.AllowOrigins
	}
	if g.Query.MaxPageSize > 0 {
		cfg.MaxPageSize = g.Query.MaxPageSize
	}
	return cfg
}

// Server represents the main HTTP server
type Server struct {
	config    *Config
	echo      *echo.Echo
	repos     interfaces.RepositoryRegistry
	health    interfaces.HealthChecker
	metrics   *metrics.Metrics
	startTime time.Time
	setup     sync.Once
}

// New creates a server over repos. health and m may be nil.
func New(cfg *Config, repos interfaces.RepositoryRegistry, health interfaces.HealthChecker, m *metrics.Metrics) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Set custom error handler
	e.HTTPErrorHandler = ErrorHandler

	return &Server{
		config:    cfg,
		echo:      e,
		repos:     repos,
		health:    health,
		metrics:   m,
		startTime: time.Now(),
	}
}

// Echo returns the Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	s.setup.Do(func() {
		s.setupMiddleware()
		s.setupRoutes()
	})
	return s.echo
}

// Start serves until ctx is cancelled or the process is interrupted, then
// shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	logger.WithField("addr", addr).Info("Starting server")

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(logger.RequestLogger())
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.AllowOrigins,
		AllowHeaders: s.config.AllowHeaders,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))

	if s.metrics != nil {
		s.echo.Use(s.metrics.Middleware())
	}

	if s.config.RequestTimeout > 0 {
		s.echo.Use(middleware.ContextTimeout(s.config.RequestTimeout))
	}
}
