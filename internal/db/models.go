package db

import (
	"arenad/internal/repository"
)

// Shape tokens shared by every domain repository. Each shape extends the
// one before it.
const (
	ShapeMini         repository.Shape = "MINI"
	ShapeMiniWithLogo repository.Shape = "MINI_WITH_LOGO"
	ShapeBase         repository.Shape = "BASE"
	ShapeExtended     repository.Shape = "EXTENDED"
)

// MemberRole is the role of a user inside a group
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// ParticipationStatus is the state of a roster's entry in a tournament
type ParticipationStatus string

const (
	StatusPending   ParticipationStatus = "pending"
	StatusAccepted  ParticipationStatus = "accepted"
	StatusRejected  ParticipationStatus = "rejected"
	StatusWithdrawn ParticipationStatus = "withdrawn"
)

// StageType is the bracket format of a stage
type StageType string

const (
	StageSingleElimination StageType = "single_elimination"
	StageDoubleElimination StageType = "double_elimination"
	StageRoundRobin        StageType = "round_robin"
	StageSwiss             StageType = "swiss"
)

// Options are shared by every domain repository constructor
type Options struct {
	// Observer receives timings of every engine operation
	Observer repository.Observer
	// DefaultPageSize is served to unpaginated reads
	DefaultPageSize int
}

func (o Options) apply(cfg repository.Config) repository.Config {
	cfg.Observer = o.Observer
	cfg.DefaultPageSize = o.DefaultPageSize
	return cfg
}
