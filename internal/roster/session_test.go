package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
)

// memStore is an in-memory Store. Setting err makes every save fail;
// setting started/release makes SaveRoster block until released. Setting
// blockLoad makes LoadRoster for that club block on loadRelease.
type memStore struct {
	mu      sync.Mutex
	docs    map[string]Document
	saves   int
	err     error
	loadErr error

	started chan struct{}
	release chan struct{}

	blockLoad   string
	loadStarted chan struct{}
	loadRelease chan struct{}
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]Document)}
}

func (m *memStore) LoadRoster(_ context.Context, clubID string) (*Document, error) {
	if m.blockLoad != "" && clubID == m.blockLoad {
		m.loadStarted <- struct{}{}
		<-m.loadRelease
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	doc, ok := m.docs[clubID]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *memStore) SaveRoster(_ context.Context, clubID string, doc Document) error {
	if m.started != nil {
		m.started <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.docs[clubID] = doc
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) doc(clubID string) Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[clubID]
}

func intPtr(v int) *int { return &v }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	all := []catalog.Gender{catalog.GenderMale, catalog.GenderFemale, catalog.GenderMixed}
	mf := []catalog.Gender{catalog.GenderMale, catalog.GenderFemale}

	c, err := catalog.New([]catalog.SportSchema{
		{
			Sport:      "Football",
			Federation: "FFF",
			Kind:       catalog.KindTeam,
			Categories: []catalog.AgeCategory{
				{
					ID: "u13", Label: "U13", MinAge: intPtr(11), MaxAge: intPtr(12), Genders: mf,
					Levels: []catalog.CompetitionLevel{{ID: "regional", Label: "Regional"}},
				},
				{
					ID: "seniors", Label: "Seniors", MinAge: intPtr(18), Genders: all,
					Levels: []catalog.CompetitionLevel{
						{ID: "ligue1", Label: "Ligue 1"},
						{ID: "departemental", Label: "Departemental", Divisions: []string{"D1", "D2"}},
					},
				},
			},
		},
		{
			Sport:      "Handball",
			Federation: "FFHandball",
			Kind:       catalog.KindTeam,
			Categories: []catalog.AgeCategory{
				{
					ID: "seniors", Label: "Seniors", MinAge: intPtr(18), Genders: mf,
					Levels: []catalog.CompetitionLevel{{ID: "nationale", Label: "Nationale", Divisions: []string{"N1", "N2"}}},
				},
			},
		},
		{
			Sport:      "Judo",
			Federation: "FFJDA",
			Kind:       catalog.KindIndividual,
			Categories: []catalog.AgeCategory{
				{ID: "minimes", Label: "Minimes", MinAge: intPtr(13), MaxAge: intPtr(14), Genders: mf},
				{ID: "seniors", Label: "Seniors", MinAge: intPtr(18), Genders: all},
			},
		},
	}, []catalog.SportInfo{{Sport: "Petanque", Federation: "FFPJP"}})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("team-%d", n)
	})
}

func openSession(t *testing.T, store *memStore, sport string) *Session {
	t.Helper()
	s, err := Open(context.Background(), store, testCatalog(t), "club-1", sport, sequentialIDs())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func seniorsD1(gender catalog.Gender) AddTeamRequest {
	return AddTeamRequest{AgeCategoryID: "seniors", CompetitionLevelID: "departemental", Division: "D1", Gender: gender}
}

func TestAddTeam(t *testing.T) {
	store := newMemStore()
	s := openSession(t, store, "Football")

	team, err := s.AddTeam(context.Background(), seniorsD1(catalog.GenderMale))
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	if team.ID != "team-1" || team.AgeCategoryLabel != "Seniors" || team.CompetitionLevelLabel != "Departemental" {
		t.Fatalf("AddTeam() = %+v", team)
	}

	teams := s.Roster().Teams()
	if len(teams) != 1 || teams[0] != team {
		t.Fatalf("Roster().Teams() = %+v, want [%+v]", teams, team)
	}
	doc := store.doc("club-1")
	if doc.Kind != catalog.KindTeam || len(doc.Teams) != 1 || doc.Teams[0].ID != "team-1" {
		t.Fatalf("stored document = %+v", doc)
	}
}

func TestAddTeamWithoutDivision(t *testing.T) {
	s := openSession(t, newMemStore(), "Football")

	team, err := s.AddTeam(context.Background(), AddTeamRequest{
		AgeCategoryID: "seniors", CompetitionLevelID: "ligue1", Gender: catalog.GenderFemale,
	})
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	if team.Division != "" {
		t.Fatalf("AddTeam().Division = %q, want empty", team.Division)
	}
}

func TestAddTeamIdenticalRequestsCreateDistinctTeams(t *testing.T) {
	s := openSession(t, newMemStore(), "Football")
	ctx := context.Background()

	first, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	second, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("AddTeam() reused id %q", first.ID)
	}
	if got := s.Roster().Len(); got != 2 {
		t.Fatalf("Roster().Len() = %d, want 2", got)
	}
}

func TestAddTeamSkipsTakenIDs(t *testing.T) {
	store := newMemStore()
	store.docs["club-1"] = Document{Kind: catalog.KindTeam, Teams: []Team{
		{ID: "dup", AgeCategoryID: "seniors", CompetitionLevelID: "ligue1", Gender: catalog.GenderMale},
	}}
	ids := []string{"dup", "fresh"}
	s, err := Open(context.Background(), store, testCatalog(t), "club-1", "Football", WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	team, err := s.AddTeam(context.Background(), seniorsD1(catalog.GenderMale))
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	if team.ID != "fresh" {
		t.Fatalf("AddTeam().ID = %q, want fresh", team.ID)
	}
}

func TestAddTeamValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       AddTeamRequest
		wantField string
	}{
		{
			name:      "unknown_category",
			req:       AddTeamRequest{AgeCategoryID: "veterans", CompetitionLevelID: "ligue1", Gender: catalog.GenderMale},
			wantField: "age_category_id",
		},
		{
			name:      "level_of_another_category",
			req:       AddTeamRequest{AgeCategoryID: "seniors", CompetitionLevelID: "regional", Gender: catalog.GenderMale},
			wantField: "competition_level_id",
		},
		{
			name:      "division_on_level_without_divisions",
			req:       AddTeamRequest{AgeCategoryID: "seniors", CompetitionLevelID: "ligue1", Division: "D1", Gender: catalog.GenderMale},
			wantField: "division",
		},
		{
			name:      "undeclared_division",
			req:       AddTeamRequest{AgeCategoryID: "seniors", CompetitionLevelID: "departemental", Division: "D9", Gender: catalog.GenderMale},
			wantField: "division",
		},
		{
			name:      "gender_not_allowed",
			req:       AddTeamRequest{AgeCategoryID: "u13", CompetitionLevelID: "regional", Gender: catalog.GenderMixed},
			wantField: "gender",
		},
		{
			name:      "missing_gender",
			req:       AddTeamRequest{AgeCategoryID: "u13", CompetitionLevelID: "regional"},
			wantField: "gender",
		},
		{
			name:      "missing_level",
			req:       AddTeamRequest{AgeCategoryID: "u13", Gender: catalog.GenderMale},
			wantField: "competition_level_id",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newMemStore()
			s := openSession(t, store, "Football")

			_, err := s.AddTeam(context.Background(), test.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("AddTeam() error = %v, want ValidationError", err)
			}
			if validationErr.Field != test.wantField {
				t.Fatalf("ValidationError.Field = %q, want %q", validationErr.Field, test.wantField)
			}
			if !s.Roster().IsEmpty() {
				t.Fatalf("roster changed after rejected AddTeam: %+v", s.Roster().Teams())
			}
			if store.saveCount() != 0 {
				t.Fatalf("store saved %d times, want 0", store.saveCount())
			}
		})
	}
}

func TestAddTeamOnIndividualSport(t *testing.T) {
	store := newMemStore()
	s := openSession(t, store, "Judo")

	_, err := s.AddTeam(context.Background(), seniorsD1(catalog.GenderMale))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("AddTeam() error = %v, want ValidationError", err)
	}
	if store.saveCount() != 0 {
		t.Fatalf("store saved %d times, want 0", store.saveCount())
	}
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openSession(t, store, "Football")

	kept, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}

	store.err = errors.New("disk full")

	_, err = s.AddTeam(ctx, seniorsD1(catalog.GenderFemale))
	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("AddTeam() error = %v, want PersistenceError", err)
	}
	if persistErr.Reason != "disk full" {
		t.Fatalf("PersistenceError.Reason = %q, want %q", persistErr.Reason, "disk full")
	}
	if !errors.Is(err, store.err) {
		t.Fatalf("PersistenceError does not wrap the store error")
	}

	if err := s.RemoveTeam(ctx, kept.ID); !errors.As(err, &persistErr) {
		t.Fatalf("RemoveTeam() error = %v, want PersistenceError", err)
	}

	teams := s.Roster().Teams()
	if len(teams) != 1 || teams[0] != kept {
		t.Fatalf("roster after failed writes = %+v, want [%+v]", teams, kept)
	}
	if s.Pending() {
		t.Fatal("Pending() = true after failed write")
	}

	// A retry after the store recovers succeeds.
	store.err = nil
	if err := s.RemoveTeam(ctx, kept.ID); err != nil {
		t.Fatalf("RemoveTeam() retry error = %v", err)
	}
	if !s.Roster().IsEmpty() {
		t.Fatalf("roster after retry = %+v, want empty", s.Roster().Teams())
	}
}

func TestRemoveTeam(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openSession(t, store, "Football")

	first, _ := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
	second, _ := s.AddTeam(ctx, seniorsD1(catalog.GenderFemale))

	err := s.RemoveTeam(ctx, "missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("RemoveTeam(missing) error = %v, want NotFoundError", err)
	}
	if store.saveCount() != 2 {
		t.Fatalf("store saved %d times, want 2", store.saveCount())
	}

	if err := s.RemoveTeam(ctx, first.ID); err != nil {
		t.Fatalf("RemoveTeam() error = %v", err)
	}
	teams := s.Roster().Teams()
	if len(teams) != 1 || teams[0].ID != second.ID {
		t.Fatalf("Roster().Teams() = %+v, want only %s", teams, second.ID)
	}
	if doc := store.doc("club-1"); len(doc.Teams) != 1 || doc.Teams[0].ID != second.ID {
		t.Fatalf("stored document = %+v", doc)
	}
}

func TestToggleCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openSession(t, store, "Judo")

	accepted, err := s.ToggleCategory(ctx, "minimes", "")
	if err != nil {
		t.Fatalf("ToggleCategory() error = %v", err)
	}
	if !accepted {
		t.Fatal("ToggleCategory() = false, want accepted")
	}
	category, ok := s.Roster().AcceptedCategory("minimes")
	if !ok {
		t.Fatal("minimes not accepted after toggle")
	}
	if category.AgeCategoryLabel != "Minimes" {
		t.Fatalf("AgeCategoryLabel = %q, want schema label", category.AgeCategoryLabel)
	}
	if len(category.AcceptedGenders) != 2 {
		t.Fatalf("AcceptedGenders = %v, want every allowed gender", category.AcceptedGenders)
	}

	accepted, err = s.ToggleCategory(ctx, "minimes", "Minimes")
	if err != nil {
		t.Fatalf("ToggleCategory() error = %v", err)
	}
	if accepted {
		t.Fatal("second ToggleCategory() = true, want removed")
	}
	if !s.Roster().IsEmpty() {
		t.Fatalf("roster after double toggle = %+v, want empty", s.Roster().AcceptedCategories())
	}
	if doc := store.doc("club-1"); doc.Kind != catalog.KindIndividual || len(doc.AcceptedCategories) != 0 {
		t.Fatalf("stored document = %+v", doc)
	}
}

func TestToggleCategoryCustomLabel(t *testing.T) {
	s := openSession(t, newMemStore(), "Judo")

	if _, err := s.ToggleCategory(context.Background(), "seniors", "Adultes"); err != nil {
		t.Fatalf("ToggleCategory() error = %v", err)
	}
	category, _ := s.Roster().AcceptedCategory("seniors")
	if category.AgeCategoryLabel != "Adultes" {
		t.Fatalf("AgeCategoryLabel = %q, want Adultes", category.AgeCategoryLabel)
	}
}

func TestToggleCategoryUnknown(t *testing.T) {
	store := newMemStore()
	s := openSession(t, store, "Judo")

	_, err := s.ToggleCategory(context.Background(), "benjamins", "Benjamins")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("ToggleCategory() error = %v, want ValidationError", err)
	}
	if store.saveCount() != 0 {
		t.Fatalf("store saved %d times, want 0", store.saveCount())
	}
}

func TestToggleGender(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMemStore(), "Judo")

	var notFound *NotFoundError
	if err := s.ToggleGender(ctx, "minimes", catalog.GenderMale); !errors.As(err, &notFound) {
		t.Fatalf("ToggleGender() on unaccepted category error = %v, want NotFoundError", err)
	}

	if _, err := s.ToggleCategory(ctx, "minimes", ""); err != nil {
		t.Fatalf("ToggleCategory() error = %v", err)
	}

	if err := s.ToggleGender(ctx, "minimes", catalog.GenderMale); err != nil {
		t.Fatalf("ToggleGender(M) error = %v", err)
	}
	category, _ := s.Roster().AcceptedCategory("minimes")
	if len(category.AcceptedGenders) != 1 || category.AcceptedGenders[0] != catalog.GenderFemale {
		t.Fatalf("AcceptedGenders = %v, want [F]", category.AcceptedGenders)
	}

	var validationErr *ValidationError
	if err := s.ToggleGender(ctx, "minimes", catalog.GenderMixed); !errors.As(err, &validationErr) {
		t.Fatalf("ToggleGender(Mixte) error = %v, want ValidationError", err)
	}
	if err := s.ToggleGender(ctx, "minimes", catalog.Gender("X")); !errors.As(err, &validationErr) {
		t.Fatalf("ToggleGender(X) error = %v, want ValidationError", err)
	}

	if err := s.ToggleGender(ctx, "minimes", catalog.GenderMale); err != nil {
		t.Fatalf("ToggleGender(M) re-add error = %v", err)
	}
	category, _ = s.Roster().AcceptedCategory("minimes")
	if len(category.AcceptedGenders) != 2 {
		t.Fatalf("AcceptedGenders = %v, want [F M]", category.AcceptedGenders)
	}
}

func TestToggleGenderLastGenderDropsCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openSession(t, store, "Judo")

	if _, err := s.ToggleCategory(ctx, "minimes", ""); err != nil {
		t.Fatalf("ToggleCategory() error = %v", err)
	}
	if err := s.ToggleGender(ctx, "minimes", catalog.GenderMale); err != nil {
		t.Fatalf("ToggleGender(M) error = %v", err)
	}
	if err := s.ToggleGender(ctx, "minimes", catalog.GenderFemale); err != nil {
		t.Fatalf("ToggleGender(F) error = %v", err)
	}

	if _, ok := s.Roster().AcceptedCategory("minimes"); ok {
		t.Fatal("category with no genders left should be dropped")
	}
	for _, category := range store.doc("club-1").AcceptedCategories {
		if len(category.AcceptedGenders) == 0 {
			t.Fatalf("stored category %q has no genders", category.AgeCategoryID)
		}
	}
}

func TestWriteInFlightRejectsMutation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := openSession(t, store, "Football")

	store.started = make(chan struct{})
	store.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
		done <- err
	}()

	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("save never started")
	}

	if !s.Pending() {
		t.Fatal("Pending() = false while a write is in flight")
	}
	if _, err := s.AddTeam(ctx, seniorsD1(catalog.GenderFemale)); !errors.Is(err, ErrWriteInFlight) {
		t.Fatalf("AddTeam() during write error = %v, want ErrWriteInFlight", err)
	}
	if err := s.RemoveTeam(ctx, "team-1"); !errors.Is(err, ErrWriteInFlight) {
		t.Fatalf("RemoveTeam() during write error = %v, want ErrWriteInFlight", err)
	}
	if !s.Roster().IsEmpty() {
		t.Fatal("roster committed before the write finished")
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	if s.Pending() {
		t.Fatal("Pending() = true after write finished")
	}
	if got := s.Roster().Len(); got != 1 {
		t.Fatalf("Roster().Len() = %d, want 1", got)
	}
}

func TestWriteRunsPastCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := newMemStore()
	s := openSession(t, store, "Football")

	store.started = make(chan struct{})
	store.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
		done <- err
	}()
	<-store.started
	cancel()
	close(store.release)

	if err := <-done; err != nil {
		t.Fatalf("AddTeam() error = %v, want the issued write to complete", err)
	}
	if got := len(store.doc("club-1").Teams); got != 1 {
		t.Fatalf("stored teams = %d, want 1", got)
	}
}

func TestChangeSportFlagsOrphans(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMemStore(), "Football")

	if _, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale)); err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}
	if _, err := s.AddTeam(ctx, AddTeamRequest{AgeCategoryID: "u13", CompetitionLevelID: "regional", Gender: catalog.GenderFemale}); err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}

	report := s.Report()
	if report.Orphaned() != 0 || !report.SchemaFound {
		t.Fatalf("Report() before change = %+v", report)
	}

	s.ChangeSport("Handball")
	report = s.Report()
	if len(report.Teams) != 2 {
		t.Fatalf("Report().Teams = %d entries, want 2 (nothing deleted)", len(report.Teams))
	}
	for _, status := range report.Teams {
		if status.Status != StatusOrphaned {
			t.Fatalf("team %s status = %s, want orphaned", status.Team.ID, status.Status)
		}
		if status.Reason == "" {
			t.Fatalf("team %s orphaned without a reason", status.Team.ID)
		}
	}
	if orphans := s.Orphans(); len(orphans.Teams) != 2 {
		t.Fatalf("Orphans().Teams = %d, want 2", len(orphans.Teams))
	}

	s.ChangeSport("Petanque")
	report = s.Report()
	if report.SchemaFound {
		t.Fatal("Report().SchemaFound = true for a sport without schema")
	}
	for _, status := range report.Teams {
		if status.Status != StatusUnknown {
			t.Fatalf("team %s status = %s, want unknown", status.Team.ID, status.Status)
		}
	}
	if _, err := s.Schema(); !errors.Is(err, catalog.ErrSchemaNotFound) {
		t.Fatalf("Schema() error = %v, want ErrSchemaNotFound", err)
	}

	s.ChangeSport("Football")
	if got := s.Report().Orphaned(); got != 0 {
		t.Fatalf("Orphaned() after switching back = %d, want 0", got)
	}
}

func TestChangeSportToOtherKind(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMemStore(), "Football")

	team, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale))
	if err != nil {
		t.Fatalf("AddTeam() error = %v", err)
	}

	s.ChangeSport("Judo")
	report := s.Report()
	if len(report.Teams) != 1 || report.Teams[0].Status != StatusOrphaned {
		t.Fatalf("Report().Teams = %+v, want one orphaned team", report.Teams)
	}

	_, err = s.ToggleCategory(ctx, "seniors", "")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || !strings.Contains(err.Error(), "remove them") {
		t.Fatalf("ToggleCategory() on populated team roster error = %v, want ValidationError", err)
	}

	if err := s.RemoveTeam(ctx, team.ID); err != nil {
		t.Fatalf("RemoveTeam() of orphan error = %v", err)
	}
	if _, err := s.ToggleCategory(ctx, "seniors", ""); err != nil {
		t.Fatalf("ToggleCategory() after clearing error = %v", err)
	}
	if kind := s.Roster().Kind(); kind != catalog.KindIndividual {
		t.Fatalf("Roster().Kind() = %s, want individual", kind)
	}
}

func TestUnknownSportSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.docs["club-1"] = Document{Kind: catalog.KindTeam, Teams: []Team{
		{ID: "old", AgeCategoryID: "seniors", CompetitionLevelID: "ligue1", Gender: catalog.GenderMale},
	}}
	s := openSession(t, store, "Curling")

	if _, err := s.AddTeam(ctx, seniorsD1(catalog.GenderMale)); !errors.Is(err, catalog.ErrSchemaNotFound) {
		t.Fatalf("AddTeam() error = %v, want ErrSchemaNotFound", err)
	}
	if err := s.RemoveTeam(ctx, "old"); err != nil {
		t.Fatalf("RemoveTeam() without schema error = %v", err)
	}
}

func TestOpenLoadsStoredRoster(t *testing.T) {
	store := newMemStore()
	store.docs["club-1"] = Document{Kind: catalog.KindIndividual, AcceptedCategories: []AcceptedCategory{
		{AgeCategoryID: "minimes", AgeCategoryLabel: "Minimes", AcceptedGenders: []catalog.Gender{catalog.GenderFemale}},
	}}
	s := openSession(t, store, "Judo")

	categories := s.Roster().AcceptedCategories()
	if len(categories) != 1 || categories[0].AgeCategoryID != "minimes" {
		t.Fatalf("Roster().AcceptedCategories() = %+v", categories)
	}
	if s.Pending() {
		t.Fatal("Pending() = true on a fresh session")
	}
}

func TestOpenErrors(t *testing.T) {
	cat := testCatalog(t)

	corrupt := newMemStore()
	corrupt.docs["club-1"] = Document{
		Kind:               catalog.KindTeam,
		Teams:              []Team{{ID: "a"}},
		AcceptedCategories: []AcceptedCategory{{AgeCategoryID: "minimes", AcceptedGenders: []catalog.Gender{catalog.GenderMale}}},
	}
	if _, err := Open(context.Background(), corrupt, cat, "club-1", "Football"); err == nil {
		t.Fatal("Open() with mixed document error = nil, want error")
	}

	failing := newMemStore()
	failing.loadErr = errors.New("connection refused")
	if _, err := Open(context.Background(), failing, cat, "club-1", "Football"); err == nil {
		t.Fatal("Open() with failing store error = nil, want error")
	}

	if _, err := Open(context.Background(), newMemStore(), cat, " ", "Football"); err == nil {
		t.Fatal("Open() with blank club id error = nil, want error")
	}
}
