package db

import (
	"context"

	"arenad/internal/errors"
	"arenad/internal/repository"

	"github.com/jmoiron/sqlx"
)

const (
	RosterDefaultShape = ShapeBase
	RosterDefaultSort  = "createdAt"
)

var rosterAggregates = repository.Aggregates{
	"memberCount": {
		Expr:    "COUNT(DISTINCT roster_members.user_id)",
		Kind:    repository.KindInt,
		Joins:   []repository.JoinSpec{repository.Left("roster_members", "roster_members.roster_id = rosters.id")},
		GroupBy: []string{"rosters.id"},
	},
}

var rosterEntity = repository.Entity{
	Name:       "roster",
	Table:      "rosters",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("name", "name"),
		repository.C("group_id", "groupId"),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
	},
	GenerateID: true,
}

func rosterConfig() repository.Config {
	return repository.Config{
		Entity: rosterEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("rosters.id")),
				repository.F("name", repository.Text("rosters.name")),
			)},
			ShapeBase: {
				Base: ShapeMini,
				Fields: repository.NewFieldMap(
					repository.F("group", repository.Nested(
						repository.F("id", repository.Text("user_groups.id")),
						repository.F("name", repository.Text("user_groups.name")),
						repository.F("abbreviation", repository.Text("user_groups.abbreviation")),
					)),
					repository.F("createdAt", repository.Time("rosters.created_at")),
				),
				Joins: []repository.JoinSpec{repository.Inner("user_groups", "user_groups.id = rosters.group_id")},
			},
			ShapeExtended: {
				Base:    ShapeBase,
				Fields:  repository.NewFieldMap(repository.F("memberCount", rosterAggregates.Field("memberCount"))),
				Joins:   rosterAggregates.Joins("memberCount"),
				GroupBy: rosterAggregates.GroupBy("memberCount"),
			},
		},
		DefaultShape: RosterDefaultShape,
		Filters: repository.Filters{
			"groupId":  repository.Equal(repository.KindString, "rosters.group_id"),
			"name":     repository.ContainsFold("rosters.name"),
			"memberId": repository.InSubquery(repository.KindString, "rosters.id", "SELECT roster_id FROM roster_members WHERE user_id = ?"),
		},
		Sorts: map[string]repository.Sortable{
			"name":      repository.By("rosters.name"),
			"createdAt": repository.By("rosters.created_at"),
			"members":   rosterAggregates.Sortable("memberCount"),
		},
		DefaultSort:  RosterDefaultSort,
		DefaultOrder: repository.Desc,
	}
}

// RosterRepository reads and writes rosters and their members
type RosterRepository struct {
	*repository.Primary
	ext     sqlx.ExtContext
	members membership
}

// NewRosterRepository creates a new roster repository
func NewRosterRepository(db *DB, opts Options) (*RosterRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(rosterConfig()))
	if err != nil {
		return nil, err
	}
	return &RosterRepository{
		Primary: p,
		ext:     db,
		members: membership{table: "roster_members", parentColumn: "roster_id", userColumn: "user_id"},
	}, nil
}

// WithTx returns a copy of r whose statements run inside tx
func (r *RosterRepository) WithTx(tx *sqlx.Tx) *RosterRepository {
	cp := *r
	cp.Primary = r.Primary.WithTx(tx)
	cp.ext = tx
	return &cp
}

// CreateWithMembers stores a roster together with its members in one unit
// of work
func (r *RosterRepository) CreateWithMembers(ctx context.Context, values map[string]any, userIDs []string) (repository.Result, error) {
	var res repository.Result
	err := r.atomically(ctx, func(txRepo *RosterRepository) error {
		created, err := txRepo.CreateEntity(ctx, values)
		if err != nil {
			return err
		}
		row, ok := created.Row()
		if !ok {
			return errors.CreationFailed(rosterEntity.Name)
		}
		for _, userID := range userIDs {
			if _, err := txRepo.AddMember(ctx, row.String("id"), userID); err != nil {
				return err
			}
		}
		res = created
		return nil
	})
	if err != nil {
		return repository.Result{}, err
	}
	return res, nil
}

func (r *RosterRepository) atomically(ctx context.Context, fn func(*RosterRepository) error) error {
	if _, ok := r.ext.(*sqlx.Tx); ok {
		return fn(r)
	}
	return r.UnitOfWork().Do(ctx, func(tx *sqlx.Tx) error {
		return fn(r.WithTx(tx))
	})
}

// AddMember puts userID on rosterID
func (r *RosterRepository) AddMember(ctx context.Context, rosterID, userID string) (bool, error) {
	return r.members.add(ctx, r.ext, rosterID, userID, nil)
}

// RemoveMember takes userID off rosterID
func (r *RosterRepository) RemoveMember(ctx context.Context, rosterID, userID string) (bool, error) {
	return r.members.remove(ctx, r.ext, rosterID, userID)
}

// MemberIDs lists the users on rosterID
func (r *RosterRepository) MemberIDs(ctx context.Context, rosterID string) ([]string, error) {
	return r.members.users(ctx, r.ext, rosterID)
}
