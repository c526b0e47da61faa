// Package testutil holds helpers shared by package and integration tests.
package testutil

import (
	"context"
	"testing"

	"arenad/internal/db"
)

// SetupTestDB opens a private in-memory database with every migration
// applied
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(db.InMemoryConfig())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		database.Close()
	})

	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return database
}

// SetupTestRepos opens a test database and builds the domain repositories
// over it
func SetupTestRepos(t *testing.T) (*db.DB, *db.Repositories) {
	t.Helper()

	database := SetupTestDB(t)
	repos, err := db.NewRepositories(database, db.Options{})
	if err != nil {
		t.Fatalf("Failed to build repositories: %v", err)
	}
	return database, repos
}

// Seed loads a YAML fixtures document into repos
func Seed(t *testing.T, repos *db.Repositories, document string) db.SeedReport {
	t.Helper()

	fx, err := db.ParseFixtures([]byte(document))
	if err != nil {
		t.Fatalf("Failed to parse fixtures: %v", err)
	}
	report, err := repos.Seed(context.Background(), fx)
	if err != nil {
		t.Fatalf("Failed to seed fixtures: %v", err)
	}
	return report
}

// LeagueFixtures is a small, fully linked data set: two groups, three
// tournaments (one private), stages, rosters and participations.
const LeagueFixtures = `
users:
  - id: u-alice
    username: alice
  - id: u-bob
    username: bob
  - id: u-carol
    username: carol
groups:
  - id: g-chess
    name: Chess Club
    abbreviation: CHS
    logo: chess.png
    owner: u-alice
    members: [u-bob, u-carol]
  - id: g-go
    name: Go Society
    abbreviation: GO
    owner: u-bob
tournaments:
  - id: t-spring
    name: Spring Open
    game: chess
    group: g-chess
    public: true
    start_date: 2024-04-01T10:00:00Z
    stages:
      - id: s-swiss
        name: Swiss
        type: swiss
      - id: s-final
        name: Final
  - id: t-summer
    name: Summer Open
    game: chess
    group: g-chess
    public: true
    start_date: 2024-07-01T10:00:00Z
  - id: t-invitational
    name: Go Invitational
    game: go
    group: g-go
    start_date: 2024-05-15T10:00:00Z
rosters:
  - id: r-chess-a
    name: Chess A
    group: g-chess
    members: [u-alice, u-bob]
  - id: r-go
    name: Go Team
    group: g-go
    members: [u-bob]
participations:
  - id: p-1
    tournament: t-spring
    roster: r-chess-a
    status: accepted
  - id: p-2
    tournament: t-invitational
    roster: r-go
lfp:
  - id: l-1
    group: g-chess
    title: Need a fourth board
    game: chess
`
