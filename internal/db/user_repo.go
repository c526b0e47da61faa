package db

import (
	"arenad/internal/repository"
)

const (
	UserDefaultShape = ShapeBase
	UserDefaultSort  = "username"
)

var userAggregates = repository.Aggregates{
	"groupCount": {
		Expr:    "COUNT(DISTINCT group_members.group_id)",
		Kind:    repository.KindInt,
		Joins:   []repository.JoinSpec{repository.Left("group_members", "group_members.user_id = users.id")},
		GroupBy: []string{"users.id"},
	},
}

var userEntity = repository.Entity{
	Name:       "user",
	Table:      "users",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("username", "username"),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
	},
	GenerateID: true,
}

func userConfig() repository.Config {
	return repository.Config{
		Entity: userEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("users.id")),
				repository.F("username", repository.Text("users.username")),
			)},
			ShapeBase: {Base: ShapeMini, Fields: repository.NewFieldMap(
				repository.F("createdAt", repository.Time("users.created_at")),
			)},
			ShapeExtended: {
				Base:    ShapeBase,
				Fields:  repository.NewFieldMap(repository.F("groupCount", userAggregates.Field("groupCount"))),
				Joins:   userAggregates.Joins("groupCount"),
				GroupBy: userAggregates.GroupBy("groupCount"),
			},
		},
		DefaultShape: UserDefaultShape,
		Filters: repository.Filters{
			"username": repository.Equal(repository.KindString, "users.username"),
			"search":   repository.ContainsFold("users.username"),
		},
		Sorts: map[string]repository.Sortable{
			"username":  repository.By("users.username"),
			"createdAt": repository.By("users.created_at"),
			"groups":    userAggregates.Sortable("groupCount"),
		},
		DefaultSort:  UserDefaultSort,
		DefaultOrder: repository.Asc,
	}
}

// UserRepository reads and writes users
type UserRepository struct {
	*repository.Primary
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, opts Options) (*UserRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(userConfig()))
	if err != nil {
		return nil, err
	}
	return &UserRepository{Primary: p}, nil
}
