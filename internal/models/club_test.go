package models

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/TommyBurger4/ClubSportFrance/internal/db"
)

type stubDirectory map[string]string

func (d stubDirectory) Federation(sport string) (string, bool) {
	fed, ok := d[sport]
	return fed, ok
}

var testDirectory = stubDirectory{
	"Football": "Federation Francaise de Football",
	"Judo":     "Federation Francaise de Judo",
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty", raw: "", want: ""},
		{name: "national_spaces", raw: "01 42 68 53 00", want: "+33142685300"},
		{name: "national_dots", raw: "06.12.34.56.78", want: "+33612345678"},
		{name: "international", raw: "+33 6 12 34 56 78", want: "+33612345678"},
		{name: "belgian", raw: "+32 2 555 12 12", want: "+3225551212"},
		{name: "too_short", raw: "0612", wantErr: true},
		{name: "letters", raw: "phone me", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NormalizePhone(test.raw)
			if test.wantErr {
				if err == nil {
					t.Fatalf("NormalizePhone(%q) error = nil, want error", test.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) error = %v", test.raw, err)
			}
			if got != test.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		e164 string
		want string
	}{
		{e164: "+33142685300", want: "01 42 68 53 00"},
		{e164: "+442079460958", want: "+44 20 7946 0958"},
		{e164: "not a number", want: "not a number"},
	}
	for _, test := range tests {
		if got := FormatPhone(test.e164); got != test.want {
			t.Fatalf("FormatPhone(%q) = %q, want %q", test.e164, got, test.want)
		}
	}
}

func TestAddressString(t *testing.T) {
	a := Address{Street: "12 rue d'Austerlitz", PostalCode: "69004", City: "Lyon"}
	if got := a.String(); got != "12 rue d'Austerlitz, 69004 Lyon" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Address{}).String(); got != "" {
		t.Fatalf("empty String() = %q, want empty", got)
	}
}

func TestNormalizeWebsite(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: ""},
		{raw: "club.fr", want: "https://club.fr"},
		{raw: "http://club.fr/contact", want: "http://club.fr/contact"},
		{raw: "ftp://club.fr", wantErr: true},
		{raw: "localhost", wantErr: true},
	}
	for _, test := range tests {
		got, err := NormalizeWebsite(test.raw)
		if test.wantErr {
			if err == nil {
				t.Fatalf("NormalizeWebsite(%q) error = nil, want error", test.raw)
			}
			continue
		}
		if err != nil || got != test.want {
			t.Fatalf("NormalizeWebsite(%q) = %q, %v, want %q", test.raw, got, err, test.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got, err := NormalizeEmail(" Contact@Club.fr "); err != nil || got != "contact@club.fr" {
		t.Fatalf("NormalizeEmail() = %q, %v", got, err)
	}
	for _, raw := range []string{"not-an-email", "Club <contact@club.fr>"} {
		if _, err := NormalizeEmail(raw); err == nil {
			t.Fatalf("NormalizeEmail(%q) error = nil, want error", raw)
		}
	}
}

func TestNormalizeFacilities(t *testing.T) {
	got := NormalizeFacilities([]string{" Terrain synthetique ", "", "Vestiaires", "Terrain synthetique", "  "})
	if len(got) != 2 || got[0] != "Terrain synthetique" || got[1] != "Vestiaires" {
		t.Fatalf("NormalizeFacilities() = %q", got)
	}
	if got := NormalizeFacilities(nil); got == nil || len(got) != 0 {
		t.Fatalf("NormalizeFacilities(nil) = %#v, want empty slice", got)
	}
}

func validClub() Club {
	return Club{
		ID:    "club-1",
		Name:  "  AS Lyon  ",
		Sport: "Football",
		Address: Address{
			Street:     "1 rue de la Paix",
			PostalCode: "69001",
			City:       "Lyon",
		},
		Contact: Contact{
			Phone:   "04 78 00 00 00",
			Email:   "contact@aslyon.fr",
			Website: "aslyon.fr",
		},
		Facilities: []string{"Stade", "Stade"},
	}
}

func TestClubNormalize(t *testing.T) {
	club := validClub()
	if err := club.Normalize(testDirectory); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if club.Name != "AS Lyon" {
		t.Fatalf("Name = %q, want trimmed", club.Name)
	}
	if club.Federation != "Federation Francaise de Football" {
		t.Fatalf("Federation = %q, want filled from sport", club.Federation)
	}
	if club.Contact.Phone != "+33478000000" || club.Contact.Website != "https://aslyon.fr" {
		t.Fatalf("Contact = %+v", club.Contact)
	}
	if len(club.Facilities) != 1 {
		t.Fatalf("Facilities = %q, want deduplicated", club.Facilities)
	}
}

func TestClubNormalizeRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Club)
		wantErr string
	}{
		{name: "missing_name", mutate: func(c *Club) { c.Name = "   " }, wantErr: "name is required"},
		{name: "unknown_sport", mutate: func(c *Club) { c.Sport = "Quidditch" }, wantErr: "not a registrable sport"},
		{name: "missing_sport", mutate: func(c *Club) { c.Sport = "" }, wantErr: "sport is required"},
		{name: "postal_code", mutate: func(c *Club) { c.Address.PostalCode = "6900" }, wantErr: "postal_code"},
		{name: "short_street", mutate: func(c *Club) { c.Address.Street = "A" }, wantErr: "street"},
		{name: "missing_city", mutate: func(c *Club) { c.Address.City = "" }, wantErr: "city"},
		{name: "phone", mutate: func(c *Club) { c.Contact.Phone = "12" }, wantErr: "phone"},
		{name: "email", mutate: func(c *Club) { c.Contact.Email = "nope" }, wantErr: "email"},
		{name: "long_name", mutate: func(c *Club) { c.Name = strings.Repeat("a", maxClubNameLength+1) }, wantErr: "characters or fewer"},
		{name: "coordinates", mutate: func(c *Club) { c.Coordinates = &Coordinates{Latitude: 91} }, wantErr: "out of range"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			club := validClub()
			test.mutate(&club)
			err := club.Normalize(testDirectory)
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("Normalize() error = %v, want it to mention %q", err, test.wantErr)
			}
		})
	}
}

func TestClubFromDB(t *testing.T) {
	club, err := ClubFromDB(db.Club{
		ID:         "club-1",
		Name:       "AS Lyon",
		Sport:      "Football",
		City:       "Lyon",
		Latitude:   sql.NullFloat64{Float64: 45.76, Valid: true},
		Longitude:  sql.NullFloat64{Float64: 4.83, Valid: true},
		Facilities: `["Stade","Club house"]`,
	})
	if err != nil {
		t.Fatalf("ClubFromDB() error = %v", err)
	}
	if club.Coordinates == nil || club.Coordinates.Latitude != 45.76 {
		t.Fatalf("Coordinates = %+v", club.Coordinates)
	}
	if len(club.Facilities) != 2 || club.Address.City != "Lyon" {
		t.Fatalf("ClubFromDB() = %+v", club)
	}

	if _, err := ClubFromDB(db.Club{ID: "bad", Facilities: "{"}); err == nil {
		t.Fatal("ClubFromDB() with corrupt facilities error = nil, want error")
	}
}

func TestUpsertParams(t *testing.T) {
	club := Club{ID: "club-1", Name: "AS Lyon", Sport: "Football"}
	params, err := club.UpsertParams()
	if err != nil {
		t.Fatalf("UpsertParams() error = %v", err)
	}
	if params.Facilities != "[]" || params.Latitude.Valid {
		t.Fatalf("UpsertParams() = %+v", params)
	}

	club.Coordinates = &Coordinates{Latitude: 45.76, Longitude: 4.83}
	params, _ = club.UpsertParams()
	if !params.Latitude.Valid || params.Longitude.Float64 != 4.83 {
		t.Fatalf("UpsertParams() coordinates = %+v / %+v", params.Latitude, params.Longitude)
	}
}
