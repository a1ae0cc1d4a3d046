package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
	"github.com/TommyBurger4/ClubSportFrance/internal/roster"
)

var ErrClubNotFound = errors.New("club not found")

// RosterStore persists roster documents in club_rosters, one row per club.
type RosterStore struct {
	db *DB
}

func NewRosterStore(db *DB) *RosterStore {
	return &RosterStore{db: db}
}

func (s *RosterStore) LoadRoster(ctx context.Context, clubID string) (*roster.Document, error) {
	row, err := s.db.Queries.GetClubRoster(ctx, clubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	return decodeDocument(row.Document)
}

// SaveRoster replaces the club's roster document. The club must exist.
func (s *RosterStore) SaveRoster(ctx context.Context, clubID string, doc roster.Document) error {
	if !doc.Kind.Valid() {
		return fmt.Errorf("roster document has no valid kind")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}

	return s.db.RunInTx(ctx, func(tx *DB) error {
		if _, err := tx.Queries.GetClub(ctx, clubID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrClubNotFound, clubID)
			}
			return fmt.Errorf("query club: %w", err)
		}
		if err := tx.Queries.UpsertClubRoster(ctx, UpsertClubRosterParams{
			ClubID:   clubID,
			Kind:     string(doc.Kind),
			Document: string(payload),
		}); err != nil {
			return fmt.Errorf("upsert roster: %w", err)
		}
		return nil
	})
}

// EnsureRoster stores an empty roster of the given kind unless the club
// already has one. It reports whether a row was created.
func (s *RosterStore) EnsureRoster(ctx context.Context, clubID string, kind catalog.Kind) (bool, error) {
	payload, err := json.Marshal(roster.Empty(kind).Document())
	if err != nil {
		return false, fmt.Errorf("encode roster: %w", err)
	}
	n, err := s.db.Queries.CreateClubRosterIfMissing(ctx, CreateClubRosterIfMissingParams{
		ClubID:   clubID,
		Kind:     string(kind),
		Document: string(payload),
	})
	if err != nil {
		return false, fmt.Errorf("create roster: %w", err)
	}
	return n > 0, nil
}

// StoredRoster is one persisted roster with the club's current sport.
type StoredRoster struct {
	ClubID   string
	ClubName string
	Sport    string
	Document roster.Document
}

// ListRosters returns every stored roster. Undecodable documents are
// returned as errors rather than skipped.
func (s *RosterStore) ListRosters(ctx context.Context) ([]StoredRoster, error) {
	rows, err := s.db.Queries.ListClubRosters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	out := make([]StoredRoster, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeDocument(row.Document)
		if err != nil {
			return nil, fmt.Errorf("club %s: %w", row.ClubID, err)
		}
		out = append(out, StoredRoster{
			ClubID:   row.ClubID,
			ClubName: row.ClubName,
			Sport:    row.Sport,
			Document: *doc,
		})
	}
	return out, nil
}

func decodeDocument(raw string) (*roster.Document, error) {
	var doc roster.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode roster document: %w", err)
	}
	return &doc, nil
}
