package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
)

// Store is the durable home of rosters. SaveRoster replaces the whole
// document atomically; LoadRoster returns nil, nil when nothing is stored.
type Store interface {
	LoadRoster(ctx context.Context, clubID string) (*Document, error)
	SaveRoster(ctx context.Context, clubID string, doc Document) error
}

// Session is one club's editing session. The working roster only changes
// after the store confirms a write, and only one write may be in flight.
type Session struct {
	clubID  string
	store   Store
	catalog *catalog.Catalog
	newID   func() string

	mu      sync.Mutex
	sport   string
	schema  *catalog.SportSchema
	roster  Roster
	pending bool
}

type Option func(*Session)

// WithIDGenerator overrides team id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// AddTeamRequest describes a team to declare. Division is optional.
type AddTeamRequest struct {
	AgeCategoryID      string         `json:"ageCategoryId"`
	CompetitionLevelID string         `json:"competitionLevelId"`
	Division           string         `json:"division,omitempty"`
	Gender             catalog.Gender `json:"gender"`
}

// Open starts a session for clubID, loading its stored roster and resolving
// the schema for sport. An unknown sport is not an error: the session opens
// without a schema and reports every entry as unknown.
func Open(ctx context.Context, store Store, cat *catalog.Catalog, clubID, sport string, opts ...Option) (*Session, error) {
	if store == nil || cat == nil {
		return nil, errors.New("roster session requires a store and a catalog")
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return nil, errors.New("club id is required")
	}

	doc, err := store.LoadRoster(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	s := &Session{
		clubID:  clubID,
		store:   store,
		catalog: cat,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolve(sport)

	if doc != nil {
		r, err := doc.Roster()
		if err != nil {
			return nil, fmt.Errorf("decode stored roster for club %s: %w", clubID, err)
		}
		s.roster = r
	}
	s.adoptSchemaKind()

	log.Ctx(ctx).Debug().
		Str("club_id", clubID).
		Str("sport", sport).
		Bool("schema_found", s.schema != nil).
		Int("entries", s.roster.Len()).
		Msg("Roster session opened")
	return s, nil
}

func (s *Session) resolve(sport string) {
	s.sport = sport
	schema, err := s.catalog.Lookup(sport)
	if err != nil {
		s.schema = nil
		return
	}
	s.schema = &schema
}

// adoptSchemaKind gives an empty roster the shape of the current schema.
func (s *Session) adoptSchemaKind() {
	if s.schema != nil && s.roster.IsEmpty() {
		s.roster = Empty(s.schema.Kind)
	}
}

func (s *Session) ClubID() string { return s.clubID }

func (s *Session) Sport() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sport
}

// Schema returns the resolved schema or catalog.ErrSchemaNotFound.
func (s *Session) Schema() (catalog.SportSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return catalog.SportSchema{}, fmt.Errorf("%w: %q", catalog.ErrSchemaNotFound, s.sport)
	}
	return s.schema.Clone(), nil
}

// Roster returns a copy of the confirmed roster.
func (s *Session) Roster() Roster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.clone()
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Report re-validates the roster against the current schema.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Check(s.sport, s.schema, s.roster)
}

// Orphans returns the report entries that no longer resolve.
func (s *Session) Orphans() Report {
	report := s.Report()
	orphans := Report{Sport: report.Sport, SchemaFound: report.SchemaFound, Kind: report.Kind}
	for _, team := range report.Teams {
		if team.Status == StatusOrphaned {
			orphans.Teams = append(orphans.Teams, team)
		}
	}
	for _, category := range report.Categories {
		if category.Status == StatusOrphaned {
			orphans.Categories = append(orphans.Categories, category)
		}
	}
	return orphans
}

// ChangeSport re-resolves the schema after the club's sport changed.
// Entries are kept; use Report to find the ones that became orphaned.
func (s *Session) ChangeSport(sport string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sport == s.sport {
		return
	}
	s.resolve(sport)
	s.adoptSchemaKind()
}

// AddTeam validates req against the schema and appends a team with a fresh
// id. Two identical requests declare two distinct teams.
func (s *Session) AddTeam(ctx context.Context, req AddTeamRequest) (Team, error) {
	var added Team
	err := s.mutate(ctx, "add_team", func(schema *catalog.SportSchema, current Roster) (Roster, error) {
		current, err := requireKind(schema, current, catalog.KindTeam)
		if err != nil {
			return Roster{}, err
		}
		team, err := buildTeam(schema, req)
		if err != nil {
			return Roster{}, err
		}
		team.ID = s.nextTeamID(current)
		added = team
		return current.withTeam(team), nil
	})
	if err != nil {
		return Team{}, err
	}
	return added, nil
}

// RemoveTeam drops a team. It works without a schema so orphaned teams can
// always be cleared.
func (s *Session) RemoveTeam(ctx context.Context, teamID string) error {
	return s.mutate(ctx, "remove_team", func(_ *catalog.SportSchema, current Roster) (Roster, error) {
		if _, ok := current.Team(teamID); !ok {
			return Roster{}, &NotFoundError{Entity: "team", ID: teamID}
		}
		return current.withoutTeam(teamID), nil
	})
}

// ToggleCategory accepts an age category with every gender it allows, or
// drops it if it is already accepted. It reports whether the category is
// accepted afterwards. label falls back to the schema's label.
func (s *Session) ToggleCategory(ctx context.Context, ageCategoryID, label string) (bool, error) {
	var accepted bool
	err := s.mutate(ctx, "toggle_category", func(schema *catalog.SportSchema, current Roster) (Roster, error) {
		if _, ok := current.AcceptedCategory(ageCategoryID); ok {
			accepted = false
			return current.withoutCategory(ageCategoryID), nil
		}

		current, err := requireKind(schema, current, catalog.KindIndividual)
		if err != nil {
			return Roster{}, err
		}
		category, ok := schema.Category(ageCategoryID)
		if !ok {
			return Roster{}, invalid("age_category_id", "%q is not a category of %s", ageCategoryID, schema.Sport)
		}
		if strings.TrimSpace(label) == "" {
			label = category.Label
		}
		accepted = true
		return current.withCategory(AcceptedCategory{
			AgeCategoryID:    category.ID,
			AgeCategoryLabel: label,
			AcceptedGenders:  slices.Clone(category.Genders),
		}), nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// ToggleGender flips one gender of an accepted category. Removing the last
// gender drops the category, since a category accepted by nobody is not a
// valid entry.
func (s *Session) ToggleGender(ctx context.Context, ageCategoryID string, gender catalog.Gender) error {
	return s.mutate(ctx, "toggle_gender", func(schema *catalog.SportSchema, current Roster) (Roster, error) {
		if !gender.Valid() {
			return Roster{}, invalid("gender", "%q is not a known gender", gender)
		}
		entry, ok := current.AcceptedCategory(ageCategoryID)
		if !ok {
			return Roster{}, &NotFoundError{Entity: "accepted category", ID: ageCategoryID}
		}

		if idx := slices.Index(entry.AcceptedGenders, gender); idx >= 0 {
			remaining := slices.Delete(entry.AcceptedGenders, idx, idx+1)
			if len(remaining) == 0 {
				return current.withoutCategory(ageCategoryID), nil
			}
			return current.withGenders(ageCategoryID, remaining), nil
		}

		if schema == nil {
			return Roster{}, fmt.Errorf("toggle gender: %w: %q", catalog.ErrSchemaNotFound, s.sport)
		}
		category, ok := schema.Category(ageCategoryID)
		if !ok {
			return Roster{}, invalid("age_category_id", "%q is not a category of %s", ageCategoryID, schema.Sport)
		}
		if !category.AllowsGender(gender) {
			return Roster{}, invalid("gender", "%q is not allowed for category %q", gender, ageCategoryID)
		}
		return current.withGenders(ageCategoryID, append(entry.AcceptedGenders, gender)), nil
	})
}

// mutate runs one write-then-commit cycle. apply works on a copy and must
// not perform I/O; its error aborts the operation before any write.
func (s *Session) mutate(ctx context.Context, op string, apply func(*catalog.SportSchema, Roster) (Roster, error)) error {
	logger := log.Ctx(ctx).With().
		Str("component", "roster_session").
		Str("club_id", s.clubID).
		Str("op", op).
		Logger()

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		logger.Warn().Msg("Roster mutation rejected: write in flight")
		return ErrWriteInFlight
	}
	snapshot := s.roster
	next, err := apply(s.schema, snapshot.clone())
	if err != nil {
		s.mu.Unlock()
		logger.Debug().Err(err).Msg("Roster mutation rejected")
		return err
	}
	s.pending = true
	s.mu.Unlock()

	// A write that has been issued runs to completion.
	saveErr := s.store.SaveRoster(context.WithoutCancel(ctx), s.clubID, next.Document())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if saveErr != nil {
		s.roster = snapshot
		logger.Error().Err(saveErr).Msg("Failed to save roster")
		return &PersistenceError{Reason: saveErr.Error(), Err: saveErr}
	}
	s.roster = next
	logger.Info().Int("entries", next.Len()).Msg("Roster saved")
	return nil
}

func (s *Session) nextTeamID(current Roster) string {
	for {
		id := s.newID()
		if _, taken := current.Team(id); !taken && id != "" {
			return id
		}
	}
}

// requireKind checks that the schema and the roster can take entries of the
// wanted kind. An empty roster switches shape; a populated one of the other
// kind has to be cleared first.
func requireKind(schema *catalog.SportSchema, current Roster, want catalog.Kind) (Roster, error) {
	if schema == nil {
		return Roster{}, catalog.ErrSchemaNotFound
	}
	if schema.Kind != want {
		return Roster{}, invalid("sport", "kind of %s is %s, want %s", schema.Sport, schema.Kind, want)
	}
	if current.Kind() != want {
		if !current.IsEmpty() {
			return Roster{}, invalid("roster", "holds %s entries; remove them before adding %s entries", current.Kind(), want)
		}
		current = Empty(want)
	}
	return current, nil
}

func buildTeam(schema *catalog.SportSchema, req AddTeamRequest) (Team, error) {
	categoryID := strings.TrimSpace(req.AgeCategoryID)
	levelID := strings.TrimSpace(req.CompetitionLevelID)
	division := strings.TrimSpace(req.Division)

	if categoryID == "" {
		return Team{}, invalid("age_category_id", "is required")
	}
	if levelID == "" {
		return Team{}, invalid("competition_level_id", "is required")
	}
	if req.Gender == "" {
		return Team{}, invalid("gender", "is required")
	}

	category, ok := schema.Category(categoryID)
	if !ok {
		return Team{}, invalid("age_category_id", "%q is not a category of %s", categoryID, schema.Sport)
	}
	level, ok := category.Level(levelID)
	if !ok {
		return Team{}, invalid("competition_level_id", "%q is not available for category %q", levelID, categoryID)
	}
	if division != "" {
		if len(level.Divisions) == 0 {
			return Team{}, invalid("division", "level %q has no divisions", levelID)
		}
		if !level.HasDivision(division) {
			return Team{}, invalid("division", "%q is not a division of level %q", division, levelID)
		}
	}
	if !category.AllowsGender(req.Gender) {
		return Team{}, invalid("gender", "%q is not allowed for category %q", req.Gender, categoryID)
	}

	return Team{
		AgeCategoryID:         category.ID,
		AgeCategoryLabel:      category.Label,
		CompetitionLevelID:    level.ID,
		CompetitionLevelLabel: level.Label,
		Division:              division,
		Gender:                req.Gender,
	}, nil
}
