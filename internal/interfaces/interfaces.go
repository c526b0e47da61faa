// Package interfaces provides the interface definitions shared by the HTTP
// server, the CLI and the database layer.
package interfaces

import (
	"context"

	"arenad/internal/repository"
)

// EntityRepository is the surface of one domain repository that outer
// layers consume: shaped reads plus single-row mutations
type EntityRepository interface {
	repository.Reader
	repository.Writer
	Entity() repository.Entity
	Shapes() *repository.ShapeRegistry
}

// GroupCreator creates a group together with its owning membership
type GroupCreator interface {
	CreateWithOwner(ctx context.Context, values map[string]any, ownerID string) (repository.Result, error)
}

// RosterCreator creates a roster together with its members
type RosterCreator interface {
	CreateWithMembers(ctx context.Context, values map[string]any, userIDs []string) (repository.Result, error)
}

// QueryExplainer renders the SQL a list read would run without running it
type QueryExplainer interface {
	BuildQuery(desc repository.QueryDescriptor) (string, []interface{}, error)
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RepositoryRegistry resolves resources by their URL name
type RepositoryRegistry interface {
	Lookup(resource string) (EntityRepository, bool)
	Resources() []string
}
