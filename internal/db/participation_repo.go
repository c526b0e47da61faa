package db

import (
	"arenad/internal/repository"
)

const (
	ParticipationDefaultShape = ShapeBase
	ParticipationDefaultSort  = "createdAt"
)

// participationEntity ignores duplicate (tournament, roster) pairs; a second
// registration comes back as an empty Result.
var participationEntity = repository.Entity{
	Name:       "participation",
	Table:      "participations",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("tournament_id", "tournamentId"),
		repository.C("roster_id", "rosterId"),
		repository.C("status", "status"),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
	},
	GenerateID:          true,
	OnConflictDoNothing: true,
}

func participationConfig() repository.Config {
	return repository.Config{
		Entity: participationEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("participations.id")),
				repository.F("status", repository.Text("participations.status")),
			)},
			ShapeBase: {
				Base: ShapeMini,
				Fields: repository.NewFieldMap(
					repository.F("createdAt", repository.Time("participations.created_at")),
					repository.F("tournament", repository.Nested(
						repository.F("id", repository.Text("tournaments.id")),
						repository.F("name", repository.Text("tournaments.name")),
					)),
					repository.F("roster", repository.Nested(
						repository.F("id", repository.Text("rosters.id")),
						repository.F("name", repository.Text("rosters.name")),
					)),
				),
				Joins: []repository.JoinSpec{
					repository.Inner("tournaments", "tournaments.id = participations.tournament_id"),
					repository.Inner("rosters", "rosters.id = participations.roster_id"),
				},
			},
			ShapeExtended: {
				Base: ShapeBase,
				Fields: repository.NewFieldMap(repository.F("group", repository.Nested(
					repository.F("id", repository.Text("user_groups.id")),
					repository.F("name", repository.Text("user_groups.name")),
				))),
				Joins: []repository.JoinSpec{repository.Inner("user_groups", "user_groups.id = rosters.group_id")},
			},
		},
		DefaultShape: ParticipationDefaultShape,
		Filters: repository.Filters{
			"tournamentId": repository.Equal(repository.KindString, "participations.tournament_id"),
			"rosterId":     repository.Equal(repository.KindString, "participations.roster_id"),
			"status":       repository.Equal(repository.KindString, "participations.status"),
			"groupId":      repository.InSubquery(repository.KindString, "participations.roster_id", "SELECT id FROM rosters WHERE group_id = ?"),
		},
		Sorts: map[string]repository.Sortable{
			"createdAt": repository.By("participations.created_at"),
			"status":    repository.By("participations.status"),
		},
		DefaultSort:  ParticipationDefaultSort,
		DefaultOrder: repository.Desc,
	}
}

// ParticipationRepository reads and writes tournament registrations
type ParticipationRepository struct {
	*repository.Primary
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(db *DB, opts Options) (*ParticipationRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(participationConfig()))
	if err != nil {
		return nil, err
	}
	return &ParticipationRepository{Primary: p}, nil
}
