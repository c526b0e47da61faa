package db

import (
	"arenad/internal/repository"
)

// LFP ("looking for players") posts advertise open spots in a group.
const (
	LFPDefaultShape = ShapeBase
	LFPDefaultSort  = "createdAt"
)

var lfpEntity = repository.Entity{
	Name:       "lfp",
	Table:      "lfp_posts",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("group_id", "groupId"),
		repository.C("title", "title"),
		repository.C("description", "description"),
		repository.C("game", "game"),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
	},
	GenerateID: true,
}

func lfpConfig() repository.Config {
	return repository.Config{
		Entity: lfpEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("lfp_posts.id")),
				repository.F("title", repository.Text("lfp_posts.title")),
			)},
			ShapeBase: {
				Base: ShapeMini,
				Fields: repository.NewFieldMap(
					repository.F("description", repository.Text("lfp_posts.description")),
					repository.F("game", repository.Text("lfp_posts.game")),
					repository.F("createdAt", repository.Time("lfp_posts.created_at")),
					repository.F("group", repository.Nested(
						repository.F("id", repository.Text("user_groups.id")),
						repository.F("name", repository.Text("user_groups.name")),
						repository.F("logo", repository.Text("user_groups.logo")),
					)),
				),
				Joins: []repository.JoinSpec{repository.Inner("user_groups", "user_groups.id = lfp_posts.group_id")},
			},
		},
		DefaultShape: LFPDefaultShape,
		Filters: repository.Filters{
			"groupId": repository.Equal(repository.KindString, "lfp_posts.group_id"),
			"game":    repository.Equal(repository.KindString, "lfp_posts.game"),
			"search":  repository.ContainsFold("lfp_posts.title"),
		},
		Sorts: map[string]repository.Sortable{
			"createdAt": repository.By("lfp_posts.created_at"),
			"title":     repository.By("lfp_posts.title"),
		},
		DefaultSort:  LFPDefaultSort,
		DefaultOrder: repository.Desc,
	}
}

// LFPRepository reads and writes LFP posts
type LFPRepository struct {
	*repository.Primary
}

// NewLFPRepository creates a new LFP repository
func NewLFPRepository(db *DB, opts Options) (*LFPRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(lfpConfig()))
	if err != nil {
		return nil, err
	}
	return &LFPRepository{Primary: p}, nil
}
