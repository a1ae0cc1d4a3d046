package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Club struct {
	ID          string
	Name        string
	Sport       string
	Federation  string
	Description string
	Street      string
	PostalCode  string
	City        string
	Latitude    sql.NullFloat64
	Longitude   sql.NullFloat64
	Phone       string
	Email       string
	Website     string
	Facilities  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ClubRoster struct {
	ClubID    string
	Kind      string
	Document  string
	UpdatedAt time.Time
}

const clubColumns = `id, name, sport, federation, description, street, postal_code, city,
    latitude, longitude, phone, email, website, facilities, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClub(row scanner) (Club, error) {
	var i Club
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Sport,
		&i.Federation,
		&i.Description,
		&i.Street,
		&i.PostalCode,
		&i.City,
		&i.Latitude,
		&i.Longitude,
		&i.Phone,
		&i.Email,
		&i.Website,
		&i.Facilities,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getClub = `-- name: GetClub :one
SELECT ` + clubColumns + `
FROM clubs
WHERE id = ?
`

func (q *Queries) GetClub(ctx context.Context, id string) (Club, error) {
	row := q.db.QueryRowContext(ctx, getClub, id)
	return scanClub(row)
}

const upsertClub = `-- name: UpsertClub :exec
INSERT INTO clubs (
    id, name, sport, federation, description, street, postal_code, city,
    latitude, longitude, phone, email, website, facilities
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    sport = excluded.sport,
    federation = excluded.federation,
    description = excluded.description,
    street = excluded.street,
    postal_code = excluded.postal_code,
    city = excluded.city,
    latitude = excluded.latitude,
    longitude = excluded.longitude,
    phone = excluded.phone,
    email = excluded.email,
    website = excluded.website,
    facilities = excluded.facilities,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertClubParams struct {
	ID          string
	Name        string
	Sport       string
	Federation  string
	Description string
	Street      string
	PostalCode  string
	City        string
	Latitude    sql.NullFloat64
	Longitude   sql.NullFloat64
	Phone       string
	Email       string
	Website     string
	Facilities  string
}

func (q *Queries) UpsertClub(ctx context.Context, arg UpsertClubParams) error {
	_, err := q.db.ExecContext(ctx, upsertClub,
		arg.ID,
		arg.Name,
		arg.Sport,
		arg.Federation,
		arg.Description,
		arg.Street,
		arg.PostalCode,
		arg.City,
		arg.Latitude,
		arg.Longitude,
		arg.Phone,
		arg.Email,
		arg.Website,
		arg.Facilities,
	)
	return err
}

const listClubs = `-- name: ListClubs :many
SELECT ` + clubColumns + `
FROM clubs
WHERE (? = '' OR sport = ?)
  AND (? = '' OR federation = ?)
  AND (? = '' OR city = ? COLLATE NOCASE)
  AND (? = 0 OR latitude IS NOT NULL)
ORDER BY name, id
`

type ListClubsParams struct {
	Sport           string
	Federation      string
	City            string
	WithCoordinates bool
}

func (q *Queries) ListClubs(ctx context.Context, arg ListClubsParams) ([]Club, error) {
	rows, err := q.db.QueryContext(ctx, listClubs,
		arg.Sport, arg.Sport,
		arg.Federation, arg.Federation,
		arg.City, arg.City,
		arg.WithCoordinates,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Club
	for rows.Next() {
		i, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getClubRoster = `-- name: GetClubRoster :one
SELECT club_id, kind, document, updated_at
FROM club_rosters
WHERE club_id = ?
`

func (q *Queries) GetClubRoster(ctx context.Context, clubID string) (ClubRoster, error) {
	row := q.db.QueryRowContext(ctx, getClubRoster, clubID)
	var i ClubRoster
	err := row.Scan(&i.ClubID, &i.Kind, &i.Document, &i.UpdatedAt)
	return i, err
}

const upsertClubRoster = `-- name: UpsertClubRoster :exec
INSERT INTO club_rosters (club_id, kind, document)
VALUES (?, ?, ?)
ON CONFLICT(club_id) DO UPDATE SET
    kind = excluded.kind,
    document = excluded.document,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertClubRosterParams struct {
	ClubID   string
	Kind     string
	Document string
}

func (q *Queries) UpsertClubRoster(ctx context.Context, arg UpsertClubRosterParams) error {
	_, err := q.db.ExecContext(ctx, upsertClubRoster, arg.ClubID, arg.Kind, arg.Document)
	return err
}

const createClubRosterIfMissing = `-- name: CreateClubRosterIfMissing :execrows
INSERT INTO club_rosters (club_id, kind, document)
VALUES (?, ?, ?)
ON CONFLICT(club_id) DO NOTHING
`

type CreateClubRosterIfMissingParams struct {
	ClubID   string
	Kind     string
	Document string
}

func (q *Queries) CreateClubRosterIfMissing(ctx context.Context, arg CreateClubRosterIfMissingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createClubRosterIfMissing, arg.ClubID, arg.Kind, arg.Document)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listClubRosters = `-- name: ListClubRosters :many
SELECT r.club_id, c.name, c.sport, r.kind, r.document, r.updated_at
FROM club_rosters r
JOIN clubs c ON c.id = r.club_id
ORDER BY r.club_id
`

type ListClubRostersRow struct {
	ClubID    string
	ClubName  string
	Sport     string
	Kind      string
	Document  string
	UpdatedAt time.Time
}

func (q *Queries) ListClubRosters(ctx context.Context) ([]ListClubRostersRow, error) {
	rows, err := q.db.QueryContext(ctx, listClubRosters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListClubRostersRow
	for rows.Next() {
		var i ListClubRostersRow
		if err := rows.Scan(&i.ClubID, &i.ClubName, &i.Sport, &i.Kind, &i.Document, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
