package db

import (
	"arenad/internal/repository"
)

const (
	TournamentDefaultShape = ShapeBase
	TournamentDefaultSort  = "startDate"
)

var tournamentAggregates = repository.Aggregates{
	"participantCount": {
		Expr:    "COUNT(DISTINCT participations.id)",
		Kind:    repository.KindInt,
		Joins:   []repository.JoinSpec{repository.Left("participations", "participations.tournament_id = tournaments.id")},
		GroupBy: []string{"tournaments.id"},
	},
}

var tournamentEntity = repository.Entity{
	Name:       "tournament",
	Table:      "tournaments",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("name", "name"),
		repository.C("description", "description"),
		repository.C("game", "game"),
		repository.C("logo", "logo"),
		repository.C("is_public", "isPublic").Typed(repository.KindBool),
		repository.C("group_id", "groupId"),
		repository.C("start_date", "startDate").Typed(repository.KindTime),
		repository.C("end_date", "endDate").Typed(repository.KindTime),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
		repository.C("updated_at", "updatedAt").Typed(repository.KindTime),
	},
	GenerateID: true,
	UpdatedAt:  "updated_at",
}

func tournamentConfig() repository.Config {
	return repository.Config{
		Entity: tournamentEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("tournaments.id")),
				repository.F("name", repository.Text("tournaments.name")),
			)},
			ShapeBase: {Base: ShapeMini, Fields: repository.NewFieldMap(
				repository.F("game", repository.Text("tournaments.game")),
				repository.F("description", repository.Text("tournaments.description")),
				repository.F("logo", repository.Text("tournaments.logo")),
				repository.F("isPublic", repository.Bool("tournaments.is_public")),
				repository.F("startDate", repository.Time("tournaments.start_date")),
				repository.F("endDate", repository.Time("tournaments.end_date")),
				repository.F("createdAt", repository.Time("tournaments.created_at")),
			)},
			ShapeExtended: {
				Base: ShapeBase,
				Fields: repository.NewFieldMap(
					repository.F("affiliatedGroup", repository.Nested(
						repository.F("id", repository.Text("affiliated.id")),
						repository.F("name", repository.Text("affiliated.name")),
						repository.F("abbreviation", repository.Text("affiliated.abbreviation")),
					)),
					repository.F("participantCount", tournamentAggregates.Field("participantCount")),
				),
				Joins: append([]repository.JoinSpec{
					repository.Left("user_groups", "affiliated.id = tournaments.group_id").As("affiliated"),
				}, tournamentAggregates.Joins("participantCount")...),
				GroupBy: tournamentAggregates.GroupBy("participantCount"),
			},
		},
		DefaultShape: TournamentDefaultShape,
		Filters: repository.Filters{
			"name":         repository.ContainsFold("tournaments.name"),
			"game":         repository.Equal(repository.KindString, "tournaments.game"),
			"groupId":      repository.Equal(repository.KindString, "tournaments.group_id"),
			"isPublic":     repository.Equal(repository.KindBool, "tournaments.is_public"),
			"startsAfter":  repository.AtLeast(repository.KindTime, "tournaments.start_date"),
			"startsBefore": repository.AtMost(repository.KindTime, "tournaments.start_date"),
			"hasStages":    repository.ExistsWhen("SELECT 1 FROM stages WHERE stages.tournament_id = tournaments.id"),
		},
		Sorts: map[string]repository.Sortable{
			"name":         repository.By("tournaments.name"),
			"startDate":    repository.By("tournaments.start_date"),
			"createdAt":    repository.By("tournaments.created_at"),
			"participants": tournamentAggregates.Sortable("participantCount"),
		},
		DefaultSort:  TournamentDefaultSort,
		DefaultOrder: repository.Desc,
	}
}

// TournamentRepository reads and writes tournaments
type TournamentRepository struct {
	*repository.Primary
}

// NewTournamentRepository creates a new tournament repository
func NewTournamentRepository(db *DB, opts Options) (*TournamentRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(tournamentConfig()))
	if err != nil {
		return nil, err
	}
	return &TournamentRepository{Primary: p}, nil
}
