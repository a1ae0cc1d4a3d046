package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TommyBurger4/ClubSportFrance/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedClub inserts a minimal club row.
func SeedClub(t *testing.T, database *db.DB, id, name, sport string) db.Club {
	t.Helper()

	ctx := context.Background()
	err := database.Queries.UpsertClub(ctx, db.UpsertClubParams{
		ID:         id,
		Name:       name,
		Sport:      sport,
		Facilities: "[]",
	})
	if err != nil {
		t.Fatalf("seed club %s: %v", id, err)
	}
	club, err := database.Queries.GetClub(ctx, id)
	if err != nil {
		t.Fatalf("read seeded club %s: %v", id, err)
	}
	return club
}
