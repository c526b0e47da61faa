package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"arenad/internal/errors"
	"arenad/internal/repository"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

// Fixtures is a YAML document of seed data. References between entities
// use the ids given in the document.
type Fixtures struct {
	Users          []UserFixture          `yaml:"users"`
	Groups         []GroupFixture         `yaml:"groups"`
	Tournaments    []TournamentFixture    `yaml:"tournaments"`
	Rosters        []RosterFixture        `yaml:"rosters"`
	Participations []ParticipationFixture `yaml:"participations"`
	LFP            []LFPFixture           `yaml:"lfp"`
}

type UserFixture struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
}

type GroupFixture struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Abbreviation string   `yaml:"abbreviation"`
	Description  string   `yaml:"description"`
	Logo         string   `yaml:"logo"`
	Owner        string   `yaml:"owner"`
	Members      []string `yaml:"members"`
}

type TournamentFixture struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Game        string         `yaml:"game"`
	Group       string         `yaml:"group"`
	Public      bool           `yaml:"public"`
	StartDate   *time.Time     `yaml:"start_date"`
	EndDate     *time.Time     `yaml:"end_date"`
	Stages      []StageFixture `yaml:"stages"`
}

type StageFixture struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Sequence int    `yaml:"sequence"`
}

type RosterFixture struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Group   string   `yaml:"group"`
	Members []string `yaml:"members"`
}

type ParticipationFixture struct {
	ID         string `yaml:"id"`
	Tournament string `yaml:"tournament"`
	Roster     string `yaml:"roster"`
	Status     string `yaml:"status"`
}

type LFPFixture struct {
	ID          string `yaml:"id"`
	Group       string `yaml:"group"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Game        string `yaml:"game"`
}

// SeedReport counts the rows a seed run stored, per resource
type SeedReport map[string]int

// LoadFixtures reads a fixtures document from path
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileReadError(path, err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a fixtures document
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid fixtures: %v", err))
	}
	return &fx, nil
}

// Seed stores fx through the repositories in a single unit of work.
// Nothing is stored when any row fails.
func (r *Repositories) Seed(ctx context.Context, fx *Fixtures) (SeedReport, error) {
	report := SeedReport{}
	err := r.Users.UnitOfWork().Do(ctx, func(tx *sqlx.Tx) error {
		report = SeedReport{}
		return r.WithTx(tx).seed(ctx, fx, report)
	})
	if err != nil {
		return nil, errors.TransactionFailed("seed", err)
	}
	return report, nil
}

func (r *Repositories) seed(ctx context.Context, fx *Fixtures, report SeedReport) error {
	for _, u := range fx.Users {
		if err := created(ResourceUsers, report)(r.Users.CreateEntity(ctx, map[string]any{
			"id": u.ID, "username": u.Username,
		})); err != nil {
			return err
		}
	}

	for _, g := range fx.Groups {
		values := map[string]any{
			"id":           g.ID,
			"name":         g.Name,
			"abbreviation": g.Abbreviation,
			"description":  g.Description,
			"logo":         nullable(g.Logo),
		}
		var (
			res repository.Result
			err error
		)
		if g.Owner != "" {
			res, err = r.Groups.CreateWithOwner(ctx, values, g.Owner)
		} else {
			res, err = r.Groups.CreateEntity(ctx, values)
		}
		if err := created(ResourceGroups, report)(res, err); err != nil {
			return err
		}
		row, _ := res.Row()
		for _, userID := range g.Members {
			if _, err := r.Groups.AddMember(ctx, row.String("id"), userID, RoleMember); err != nil {
				return err
			}
		}
	}

	for _, t := range fx.Tournaments {
		values := map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"description": t.Description,
			"game":        t.Game,
			"groupId":     nullable(t.Group),
			"isPublic":    t.Public,
		}
		if t.StartDate != nil {
			values["startDate"] = *t.StartDate
		}
		if t.EndDate != nil {
			values["endDate"] = *t.EndDate
		}
		res, err := r.Tournaments.CreateEntity(ctx, values)
		if err := created(ResourceTournaments, report)(res, err); err != nil {
			return err
		}
		row, _ := res.Row()
		for i, s := range t.Stages {
			sequence := s.Sequence
			if sequence == 0 {
				sequence = i + 1
			}
			stageType := s.Type
			if stageType == "" {
				stageType = string(StageSingleElimination)
			}
			if err := created(ResourceStages, report)(r.Stages.CreateEntity(ctx, map[string]any{
				"id":           s.ID,
				"tournamentId": row.String("id"),
				"name":         s.Name,
				"type":         stageType,
				"sequence":     sequence,
			})); err != nil {
				return err
			}
		}
	}

	for _, ro := range fx.Rosters {
		if err := created(ResourceRosters, report)(r.Rosters.CreateWithMembers(ctx, map[string]any{
			"id": ro.ID, "name": ro.Name, "groupId": ro.Group,
		}, ro.Members)); err != nil {
			return err
		}
	}

	for _, p := range fx.Participations {
		status := p.Status
		if status == "" {
			status = string(StatusPending)
		}
		if err := created(ResourceParticipations, report)(r.Participations.CreateEntity(ctx, map[string]any{
			"id": p.ID, "tournamentId": p.Tournament, "rosterId": p.Roster, "status": status,
		})); err != nil {
			return err
		}
	}

	for _, l := range fx.LFP {
		if err := created(ResourceLFP, report)(r.LFP.CreateEntity(ctx, map[string]any{
			"id": l.ID, "groupId": l.Group, "title": l.Title, "description": l.Description, "game": l.Game,
		})); err != nil {
			return err
		}
	}
	return nil
}

// created counts a successful create of resource and turns an empty result
// into a creation failure
func created(resource string, report SeedReport) func(repository.Result, error) error {
	return func(res repository.Result, err error) error {
		if err != nil {
			return fmt.Errorf("seed %s: %w", resource, err)
		}
		if res.Empty() {
			return errors.CreationFailed(resource)
		}
		report[resource]++
		return nil
	}
}

// nullable maps an empty string to SQL NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
