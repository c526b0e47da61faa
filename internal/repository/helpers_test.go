package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const clubSchema = `
CREATE TABLE clubs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	abbreviation TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	logo TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE players (
	id TEXT PRIMARY KEY,
	handle TEXT NOT NULL UNIQUE
);

CREATE TABLE club_members (
	club_id TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
	player_id TEXT NOT NULL REFERENCES players(id),
	PRIMARY KEY (club_id, player_id)
);
`

var clubAggregates = Aggregates{
	"memberCount": {
		Expr:    "COUNT(DISTINCT club_members.player_id)",
		Kind:    KindInt,
		Joins:   []JoinSpec{Left("club_members", "club_members.club_id = clubs.id")},
		GroupBy: []string{"clubs.id"},
	},
}

var clubEntity = Entity{
	Name:       "club",
	Table:      "clubs",
	PrimaryKey: "id",
	Columns: []Column{
		C("id", "id"),
		C("name", "name"),
		C("abbreviation", "abbreviation"),
		C("description", "description"),
		C("logo", "logo"),
		C("created_at", "createdAt").Typed(KindTime),
		C("updated_at", "updatedAt").Typed(KindTime),
	},
	GenerateID: true,
	UpdatedAt:  "updated_at",
}

func clubConfig() Config {
	return Config{
		Entity: clubEntity,
		Shapes: map[Shape]ShapeDefinition{
			"MINI": {Fields: NewFieldMap(
				F("id", Text("clubs.id")),
				F("name", Text("clubs.name")),
				F("abbreviation", Text("clubs.abbreviation")),
			)},
			"MINI_WITH_LOGO": {Base: "MINI", Fields: NewFieldMap(
				F("logo", Text("clubs.logo")),
			)},
			"BASE": {Base: "MINI_WITH_LOGO", Fields: NewFieldMap(
				F("description", Text("clubs.description")),
				F("createdAt", Time("clubs.created_at")),
			)},
			"EXTENDED": {
				Base:    "BASE",
				Fields:  NewFieldMap(F("memberCount", clubAggregates.Field("memberCount"))),
				Joins:   clubAggregates.Joins("memberCount"),
				GroupBy: clubAggregates.GroupBy("memberCount"),
			},
		},
		DefaultShape: "BASE",
		Filters: Filters{
			"name":         Equal(KindString, "clubs.name"),
			"abbreviation": Equal(KindString, "clubs.abbreviation"),
			"search":       ContainsFold("clubs.name"),
			"memberId": InSubquery(KindString, "clubs.id",
				"SELECT club_id FROM club_members WHERE player_id = ?"),
			"createdAfter": AtLeast(KindTime, "clubs.created_at"),
		},
		Sorts: map[string]Sortable{
			"name":      By("clubs.name"),
			"createdAt": By("clubs.created_at"),
			"members":   clubAggregates.Sortable("memberCount"),
		},
		DefaultSort:  "createdAt",
		DefaultOrder: Desc,
	}
}

// newTestStore opens a private in-memory database with the club schema.
// A single connection keeps every statement on the same database.
func newTestStore(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(clubSchema)
	require.NoError(t, err)
	return db
}

func newClubRepo(t *testing.T, db *sqlx.DB) *Primary {
	t.Helper()
	p, err := NewPrimary(db, clubConfig())
	require.NoError(t, err)
	return p
}

// seedClub inserts a club created offset minutes after a fixed epoch
func seedClub(t *testing.T, db *sqlx.DB, id, name, abbr string, offset int) {
	t.Helper()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute)
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO clubs (id, name, abbreviation, created_at) VALUES (?, ?, ?, ?)`,
		id, name, abbr, created.Format("2006-01-02 15:04:05"))
	require.NoError(t, err)
}

func seedMember(t *testing.T, db *sqlx.DB, clubID, playerID string) {
	t.Helper()
	_, err := db.Exec(`INSERT OR IGNORE INTO players (id, handle) VALUES (?, ?)`, playerID, "p-"+playerID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO club_members (club_id, player_id) VALUES (?, ?)`, clubID, playerID)
	require.NoError(t, err)
}

// seedChess stores one Chess club and nine decoys
func seedChess(t *testing.T, db *sqlx.DB) {
	t.Helper()
	seedClub(t, db, "chess", "Chess", "CHS", 0)
	for i := 1; i <= 9; i++ {
		seedClub(t, db, fmt.Sprintf("decoy-%d", i), fmt.Sprintf("Decoy %d", i), fmt.Sprintf("D%d", i), i)
	}
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.String("id")
	}
	return ids
}
