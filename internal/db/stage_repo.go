package db

import (
	"arenad/internal/repository"
)

const (
	StageDefaultShape = ShapeBase
	StageDefaultSort  = "sequence"
)

var stageEntity = repository.Entity{
	Name:       "stage",
	Table:      "stages",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("tournament_id", "tournamentId"),
		repository.C("name", "name"),
		repository.C("type", "type"),
		repository.C("sequence", "sequence").Typed(repository.KindInt),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
	},
	GenerateID: true,
}

func stageConfig() repository.Config {
	return repository.Config{
		Entity: stageEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("stages.id")),
				repository.F("name", repository.Text("stages.name")),
			)},
			ShapeBase: {Base: ShapeMini, Fields: repository.NewFieldMap(
				repository.F("type", repository.Text("stages.type")),
				repository.F("sequence", repository.Int("stages.sequence")),
				repository.F("tournamentId", repository.Text("stages.tournament_id")),
				repository.F("createdAt", repository.Time("stages.created_at")),
			)},
			ShapeExtended: {
				Base: ShapeBase,
				Fields: repository.NewFieldMap(repository.F("tournament", repository.Nested(
					repository.F("id", repository.Text("tournaments.id")),
					repository.F("name", repository.Text("tournaments.name")),
				))),
				Joins: []repository.JoinSpec{repository.Inner("tournaments", "tournaments.id = stages.tournament_id")},
			},
		},
		DefaultShape: StageDefaultShape,
		Filters: repository.Filters{
			"tournamentId": repository.Equal(repository.KindString, "stages.tournament_id"),
			"type":         repository.Equal(repository.KindString, "stages.type"),
			"minSequence":  repository.AtLeast(repository.KindInt, "stages.sequence"),
			"maxSequence":  repository.AtMost(repository.KindInt, "stages.sequence"),
		},
		Sorts: map[string]repository.Sortable{
			"sequence":  repository.By("stages.sequence"),
			"name":      repository.By("stages.name"),
			"createdAt": repository.By("stages.created_at"),
		},
		DefaultSort:  StageDefaultSort,
		DefaultOrder: repository.Asc,
	}
}

// StageRepository reads and writes tournament stages
type StageRepository struct {
	*repository.Primary
}

// NewStageRepository creates a new stage repository
func NewStageRepository(db *DB, opts Options) (*StageRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(stageConfig()))
	if err != nil {
		return nil, err
	}
	return &StageRepository{Primary: p}, nil
}
