package db

import (
	"arenad/internal/interfaces"

	"github.com/jmoiron/sqlx"
)

// Resource names as they appear in URLs and on the command line
const (
	ResourceGroups         = "groups"
	ResourceTournaments    = "tournaments"
	ResourceStages         = "stages"
	ResourceRosters        = "rosters"
	ResourceParticipations = "participations"
	ResourceLFP            = "lfp"
	ResourceUsers          = "users"
)

var resourceNames = []string{
	ResourceGroups,
	ResourceTournaments,
	ResourceStages,
	ResourceRosters,
	ResourceParticipations,
	ResourceLFP,
	ResourceUsers,
}

// Repositories bundles every domain repository over one database
type Repositories struct {
	Users          *UserRepository
	Groups         *GroupRepository
	Tournaments    *TournamentRepository
	Stages         *StageRepository
	Rosters        *RosterRepository
	Participations *ParticipationRepository
	LFP            *LFPRepository
}

var _ interfaces.RepositoryRegistry = (*Repositories)(nil)

// NewRepositories builds every domain repository over db
func NewRepositories(db *DB, opts Options) (*Repositories, error) {
	var (
		r   Repositories
		err error
	)
	if r.Users, err = NewUserRepository(db, opts); err != nil {
		return nil, err
	}
	if r.Groups, err = NewGroupRepository(db, opts); err != nil {
		return nil, err
	}
	if r.Tournaments, err = NewTournamentRepository(db, opts); err != nil {
		return nil, err
	}
	if r.Stages, err = NewStageRepository(db, opts); err != nil {
		return nil, err
	}
	if r.Rosters, err = NewRosterRepository(db, opts); err != nil {
		return nil, err
	}
	if r.Participations, err = NewParticipationRepository(db, opts); err != nil {
		return nil, err
	}
	if r.LFP, err = NewLFPRepository(db, opts); err != nil {
		return nil, err
	}
	return &r, nil
}

// WithTx returns a copy of r with every repository bound to tx
func (r *Repositories) WithTx(tx *sqlx.Tx) *Repositories {
	return &Repositories{
		Users:          &UserRepository{Primary: r.Users.Primary.WithTx(tx)},
		Groups:         r.Groups.WithTx(tx),
		Tournaments:    &TournamentRepository{Primary: r.Tournaments.Primary.WithTx(tx)},
		Stages:         &StageRepository{Primary: r.Stages.Primary.WithTx(tx)},
		Rosters:        r.Rosters.WithTx(tx),
		Participations: &ParticipationRepository{Primary: r.Participations.Primary.WithTx(tx)},
		LFP:            &LFPRepository{Primary: r.LFP.Primary.WithTx(tx)},
	}
}

// Resources lists the resource names in routing order
func (r *Repositories) Resources() []string {
	return append([]string(nil), resourceNames...)
}

// Lookup returns the repository serving resource
func (r *Repositories) Lookup(resource string) (interfaces.EntityRepository, bool) {
	switch resource {
	case ResourceGroups:
		return r.Groups, true
	case ResourceTournaments:
		return r.Tournaments, true
	case ResourceStages:
		return r.Stages, true
	case ResourceRosters:
		return r.Rosters, true
	case ResourceParticipations:
		return r.Participations, true
	case ResourceLFP:
		return r.LFP, true
	case ResourceUsers:
		return r.Users, true
	}
	return nil, false
}
