package server

import (
	"arenad/internal/errors"
	"arenad/internal/repository"
)

// ErrorResponse is the body of every failed request
type ErrorResponse = errors.HTTPErrorResponse

// ListResponse is a page of shaped rows with navigation metadata
type ListResponse struct {
	Data       []repository.Row      `json:"data"`
	Pagination repository.Pagination `json:"pagination"`
	Links      repository.Links      `json:"links"`
}

// ItemResponse wraps one shaped row
type ItemResponse struct {
	Data repository.Row `json:"data"`
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Version string `json:"version" example:"1.0.0"`
}

// SystemStatusResponse represents the overall system status
type SystemStatusResponse struct {
	Status   string              `json:"status" example:"healthy"`
	Version  string              `json:"version" example:"1.0.0"`
	Uptime   string              `json:"uptime" example:"2h30m15s"`
	Services ServiceHealthStatus `json:"services"`
	Counts   map[string]int64    `json:"counts"`
}

// ServiceHealthStatus represents the health status of dependencies
type ServiceHealthStatus struct {
	Database string `json:"database" example:"healthy"`
}
