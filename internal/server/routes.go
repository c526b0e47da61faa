package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"arenad/internal/constants"
	"arenad/internal/logger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/sync/errgroup"
)

// statusCountTimeout bounds the per-entity counts of the status endpoint
const statusCountTimeout = 5 * time.Second

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	s.echo.GET("/health", s.handleHealth)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	api := s.echo.Group("/api")
	api.GET("/status", s.handleSystemStatus)

	if s.repos == nil {
		return
	}
	for _, name := range s.repos.Resources() {
		repo, ok := s.repos.Lookup(name)
		if !ok {
			continue
		}
		h := &resourceHandler{name: name, repo: repo, maxPageSize: s.config.MaxPageSize}

		g := api.Group("/" + name)
		g.GET("", h.list)
		g.POST("", h.create)
		g.GET("/:id", h.get)
		g.PATCH("/:id", h.update)
		g.DELETE("/:id", h.delete)
	}
}

// handleHealth godoc
// @Summary Health check
// @Description Check if the API is up
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: constants.Version,
	})
}

// handleSystemStatus godoc
// @Summary System status
// @Description Database health, uptime and the number of rows of every resource
// @Tags system
// @Produce json
// @Success 200 {object} SystemStatusResponse
// @Router /api/status [get]
func (s *Server) handleSystemStatus(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "unknown"
	if s.health != nil {
		dbStatus = "healthy"
		if err := s.health.HealthCheck(ctx); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("Database health check failed")
			dbStatus = "unhealthy"
		}
	}

	counts := s.countResources(ctx)

	overall := "healthy"
	if dbStatus != "healthy" {
		overall = "degraded"
	}

	return c.JSON(http.StatusOK, SystemStatusResponse{
		Status:   overall,
		Version:  constants.Version,
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		Services: ServiceHealthStatus{Database: dbStatus},
		Counts:   counts,
	})
}

// countResources counts every resource concurrently. A failed count is
// logged and left out.
func (s *Server) countResources(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64)
	if s.repos == nil {
		return counts
	}

	ctx, cancel := context.WithTimeout(ctx, statusCountTimeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, name := range s.repos.Resources() {
		name := name
		repo, ok := s.repos.Lookup(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			total, err := repo.Count(ctx, nil)
			if err != nil {
				logger.WithContext(ctx).WithError(err).WithField("resource", name).Warn("Failed to count resource")
				return nil
			}
			mu.Lock()
			counts[name] = total
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return counts
}
