// internal/models/club.go
package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/TommyBurger4/ClubSportFrance/internal/db"
)

const (
	maxClubNameLength    = 120
	maxDescriptionLength = 2000
	maxFacilities        = 30
	phoneRegion          = "FR"
)

var postalCodeRegex = regexp.MustCompile(`^[0-9]{5}$`)

type Address struct {
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}

// IsComplete reports whether the address has enough parts to geocode.
func (a Address) IsComplete() bool {
	return a.Street != "" && a.PostalCode != "" && a.City != ""
}

// Validate accepts an empty address. A partial one must be complete.
func (a Address) Validate() error {
	if a == (Address{}) {
		return nil
	}
	if len([]rune(a.Street)) < 3 {
		return fmt.Errorf("street must be at least 3 characters")
	}
	if !postalCodeRegex.MatchString(a.PostalCode) {
		return fmt.Errorf("postal_code must be 5 digits")
	}
	if len([]rune(a.City)) < 2 {
		return fmt.Errorf("city must be at least 2 characters")
	}
	return nil
}

// String renders the address on one line, or "" when it is empty.
func (a Address) String() string {
	if a == (Address{}) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%s, %s %s", a.Street, a.PostalCode, a.City))
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type Club struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Sport       string       `json:"sport"`
	Federation  string       `json:"federation"`
	Description string       `json:"description,omitempty"`
	Address     Address      `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Contact     Contact      `json:"contact"`
	Facilities  []string     `json:"facilities"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SportDirectory resolves the federation of a registrable sport.
type SportDirectory interface {
	Federation(sport string) (string, bool)
}

// Normalize trims the profile, fills the federation from the sport and puts
// contact fields in canonical form. It returns the first validation failure.
func (c *Club) Normalize(dir SportDirectory) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Sport = strings.TrimSpace(c.Sport)
	c.Description = strings.TrimSpace(c.Description)
	c.Address.Street = strings.TrimSpace(c.Address.Street)
	c.Address.PostalCode = strings.TrimSpace(c.Address.PostalCode)
	c.Address.City = strings.TrimSpace(c.Address.City)
	c.Facilities = NormalizeFacilities(c.Facilities)

	federation, ok := dir.Federation(c.Sport)
	if c.Sport != "" && !ok {
		return fmt.Errorf("sport %q is not a registrable sport", c.Sport)
	}
	c.Federation = federation

	phone, err := NormalizePhone(c.Contact.Phone)
	if err != nil {
		return err
	}
	c.Contact.Phone = phone

	email, err := NormalizeEmail(c.Contact.Email)
	if err != nil {
		return err
	}
	c.Contact.Email = email

	website, err := NormalizeWebsite(c.Contact.Website)
	if err != nil {
		return err
	}
	c.Contact.Website = website

	return c.Validate()
}

func (c Club) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Name) > maxClubNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxClubNameLength)
	}
	if c.Sport == "" {
		return fmt.Errorf("sport is required")
	}
	if len(c.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be %d characters or fewer", maxDescriptionLength)
	}
	if err := c.Address.Validate(); err != nil {
		return err
	}
	if len(c.Facilities) > maxFacilities {
		return fmt.Errorf("facilities must list %d entries or fewer", maxFacilities)
	}
	if c.Coordinates != nil {
		if c.Coordinates.Latitude < -90 || c.Coordinates.Latitude > 90 ||
			c.Coordinates.Longitude < -180 || c.Coordinates.Longitude > 180 {
			return fmt.Errorf("coordinates are out of range")
		}
	}
	return nil
}

// NormalizePhone parses a French or international number and returns it in
// E.164 form. An empty input stays empty.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("phone %q is not a valid phone number", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// FormatPhone renders an E.164 number for display in national format when
// it is French.
func FormatPhone(e164 string) string {
	num, err := phonenumbers.Parse(e164, phoneRegion)
	if err != nil {
		return e164
	}
	if phonenumbers.GetRegionCodeForNumber(num) == phoneRegion {
		return phonenumbers.Format(num, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("email %q is not a valid address", raw)
	}
	return strings.ToLower(addr.Address), nil
}

// NormalizeWebsite accepts bare hosts and adds https://.
func NormalizeWebsite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || !strings.Contains(u.Host, ".") {
		return "", fmt.Errorf("website %q must be an http or https URL", raw)
	}
	return u.String(), nil
}

// NormalizeFacilities trims entries and drops blanks and repeats, keeping
// the first occurrence.
func NormalizeFacilities(facilities []string) []string {
	out := make([]string, 0, len(facilities))
	seen := make(map[string]struct{}, len(facilities))
	for _, facility := range facilities {
		facility = strings.TrimSpace(facility)
		if facility == "" {
			continue
		}
		if _, dup := seen[facility]; dup {
			continue
		}
		seen[facility] = struct{}{}
		out = append(out, facility)
	}
	return out
}

func ClubFromDB(row db.Club) (Club, error) {
	var facilities []string
	if row.Facilities != "" {
		if err := json.Unmarshal([]byte(row.Facilities), &facilities); err != nil {
			return Club{}, fmt.Errorf("decode facilities of club %s: %w", row.ID, err)
		}
	}
	if facilities == nil {
		facilities = []string{}
	}

	var coords *Coordinates
	if row.Latitude.Valid && row.Longitude.Valid {
		coords = &Coordinates{Latitude: row.Latitude.Float64, Longitude: row.Longitude.Float64}
	}

	return Club{
		ID:          row.ID,
		Name:        row.Name,
		Sport:       row.Sport,
		Federation:  row.Federation,
		Description: row.Description,
		Address: Address{
			Street:     row.Street,
			PostalCode: row.PostalCode,
			City:       row.City,
		},
		Coordinates: coords,
		Contact: Contact{
			Phone:   row.Phone,
			Email:   row.Email,
			Website: row.Website,
		},
		Facilities: facilities,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (c Club) UpsertParams() (db.UpsertClubParams, error) {
	facilities := c.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	encoded, err := json.Marshal(facilities)
	if err != nil {
		return db.UpsertClubParams{}, fmt.Errorf("encode facilities: %w", err)
	}

	params := db.UpsertClubParams{
		ID:          c.ID,
		Name:        c.Name,
		Sport:       c.Sport,
		Federation:  c.Federation,
		Description: c.Description,
		Street:      c.Address.Street,
		PostalCode:  c.Address.PostalCode,
		City:        c.Address.City,
		Phone:       c.Contact.Phone,
		Email:       c.Contact.Email,
		Website:     c.Contact.Website,
		Facilities:  string(encoded),
	}
	if c.Coordinates != nil {
		params.Latitude = sql.NullFloat64{Float64: c.Coordinates.Latitude, Valid: true}
		params.Longitude = sql.NullFloat64{Float64: c.Coordinates.Longitude, Valid: true}
	}
	return params, nil
}
