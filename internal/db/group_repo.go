package db

import (
	"context"

	"arenad/internal/errors"
	"arenad/internal/repository"

	"github.com/jmoiron/sqlx"
)

const (
	GroupDefaultShape = ShapeBase
	GroupDefaultSort  = "createdAt"
)

var groupAggregates = repository.Aggregates{
	"memberCount": {
		Expr:    "COUNT(DISTINCT group_members.user_id)",
		Kind:    repository.KindInt,
		Joins:   []repository.JoinSpec{repository.Left("group_members", "group_members.group_id = user_groups.id")},
		GroupBy: []string{"user_groups.id"},
	},
}

var groupEntity = repository.Entity{
	Name:       "group",
	Table:      "user_groups",
	PrimaryKey: "id",
	Columns: []repository.Column{
		repository.C("id", "id"),
		repository.C("name", "name"),
		repository.C("abbreviation", "abbreviation"),
		repository.C("description", "description"),
		repository.C("logo", "logo"),
		repository.C("created_at", "createdAt").Typed(repository.KindTime),
		repository.C("updated_at", "updatedAt").Typed(repository.KindTime),
	},
	GenerateID: true,
	UpdatedAt:  "updated_at",
}

func groupConfig() repository.Config {
	return repository.Config{
		Entity: groupEntity,
		Shapes: map[repository.Shape]repository.ShapeDefinition{
			ShapeMini: {Fields: repository.NewFieldMap(
				repository.F("id", repository.Text("user_groups.id")),
				repository.F("name", repository.Text("user_groups.name")),
				repository.F("abbreviation", repository.Text("user_groups.abbreviation")),
			)},
			ShapeMiniWithLogo: {Base: ShapeMini, Fields: repository.NewFieldMap(
				repository.F("logo", repository.Text("user_groups.logo")),
			)},
			ShapeBase: {Base: ShapeMiniWithLogo, Fields: repository.NewFieldMap(
				repository.F("description", repository.Text("user_groups.description")),
				repository.F("createdAt", repository.Time("user_groups.created_at")),
			)},
			ShapeExtended: {
				Base:    ShapeBase,
				Fields:  repository.NewFieldMap(repository.F("memberCount", groupAggregates.Field("memberCount"))),
				Joins:   groupAggregates.Joins("memberCount"),
				GroupBy: groupAggregates.GroupBy("memberCount"),
			},
		},
		DefaultShape: GroupDefaultShape,
		Filters: repository.Filters{
			"name":          repository.Equal(repository.KindString, "user_groups.name"),
			"abbreviation":  repository.Equal(repository.KindString, "user_groups.abbreviation"),
			"search":        repository.ContainsFold("user_groups.name"),
			"memberId":      repository.InSubquery(repository.KindString, "user_groups.id", "SELECT group_id FROM group_members WHERE user_id = ?"),
			"createdAfter":  repository.AtLeast(repository.KindTime, "user_groups.created_at"),
			"createdBefore": repository.AtMost(repository.KindTime, "user_groups.created_at"),
		},
		Sorts: map[string]repository.Sortable{
			"name":      repository.By("user_groups.name"),
			"createdAt": repository.By("user_groups.created_at"),
			"members":   groupAggregates.Sortable("memberCount"),
		},
		DefaultSort:  GroupDefaultSort,
		DefaultOrder: repository.Desc,
	}
}

// GroupRepository reads and writes user groups and their memberships
type GroupRepository struct {
	*repository.Primary
	ext     sqlx.ExtContext
	members membership
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *DB, opts Options) (*GroupRepository, error) {
	p, err := repository.NewPrimary(db, opts.apply(groupConfig()))
	if err != nil {
		return nil, err
	}
	return &GroupRepository{
		Primary: p,
		ext:     db,
		members: membership{table: "group_members", parentColumn: "group_id", userColumn: "user_id"},
	}, nil
}

// WithTx returns a copy of r whose statements run inside tx
func (r *GroupRepository) WithTx(tx *sqlx.Tx) *GroupRepository {
	cp := *r
	cp.Primary = r.Primary.WithTx(tx)
	cp.ext = tx
	return &cp
}

// CreateWithOwner stores a group and makes ownerID its owner. Both rows are
// written in one unit of work; either both exist afterwards or neither does.
func (r *GroupRepository) CreateWithOwner(ctx context.Context, values map[string]any, ownerID string) (repository.Result, error) {
	var res repository.Result
	err := r.atomically(ctx, func(txRepo *GroupRepository) error {
		created, err := txRepo.CreateEntity(ctx, values)
		if err != nil {
			return err
		}
		row, ok := created.Row()
		if !ok {
			return errors.CreationFailed(groupEntity.Name)
		}
		if _, err := txRepo.AddMember(ctx, row.String("id"), ownerID, RoleOwner); err != nil {
			return err
		}
		res = created
		return nil
	})
	if err != nil {
		return repository.Result{}, err
	}
	return res, nil
}

// atomically runs fn in a unit of work, or directly when r is already bound
// to a transaction
func (r *GroupRepository) atomically(ctx context.Context, fn func(*GroupRepository) error) error {
	if _, ok := r.ext.(*sqlx.Tx); ok {
		return fn(r)
	}
	return r.UnitOfWork().Do(ctx, func(tx *sqlx.Tx) error {
		return fn(r.WithTx(tx))
	})
}

// AddMember links userID to groupID with role. It reports false when the
// user already belongs to the group.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string, role MemberRole) (bool, error) {
	if role == "" {
		role = RoleMember
	}
	return r.members.add(ctx, r.ext, groupID, userID, map[string]any{"role": string(role)})
}

// RemoveMember unlinks userID from groupID
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) (bool, error) {
	return r.members.remove(ctx, r.ext, groupID, userID)
}

// IsMember reports whether userID belongs to groupID
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return r.members.contains(ctx, r.ext, groupID, userID)
}

// MemberIDs lists the users of groupID
func (r *GroupRepository) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return r.members.users(ctx, r.ext, groupID)
}
