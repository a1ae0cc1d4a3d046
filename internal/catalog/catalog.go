// Package catalog holds the sport taxonomy: for every recognised sport its
// federation, its kind and the age categories, competition levels and
// divisions a club may declare.
//
// A Catalog is immutable once built. Construct it once at start-up and pass
// it to whatever needs it; tests can build their own with New.
package catalog

import (
	"errors"
	"fmt"
)

const defaultEmoji = "🏅"

// ErrSchemaNotFound is returned when a sport has no category structure.
var ErrSchemaNotFound = errors.New("sport schema not found")

// SportInfo is a registrable sport. Every sport with a schema has one, but
// some registrable sports have no category structure yet.
type SportInfo struct {
	Sport      string `yaml:"sport" json:"sport"`
	Federation string `yaml:"federation" json:"federation"`
	Emoji      string `yaml:"emoji,omitempty" json:"emoji,omitempty"`
}

// Option is a value/label pair for sport pickers.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Catalog struct {
	sports      []SportSchema
	bySport     map[string]int
	directory   []SportInfo
	byDirectory map[string]int
}

// New validates the schemas and directory and builds a Catalog. Sports that
// have a schema but no directory entry are appended to the directory.
func New(sports []SportSchema, directory []SportInfo) (*Catalog, error) {
	c := &Catalog{
		sports:      make([]SportSchema, 0, len(sports)),
		bySport:     make(map[string]int, len(sports)),
		directory:   make([]SportInfo, 0, len(directory)),
		byDirectory: make(map[string]int, len(directory)),
	}

	for _, schema := range sports {
		if err := schema.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.bySport[schema.Sport]; dup {
			return nil, fmt.Errorf("duplicate sport %q", schema.Sport)
		}
		c.bySport[schema.Sport] = len(c.sports)
		c.sports = append(c.sports, schema.Clone())
	}

	for _, info := range directory {
		if info.Sport == "" {
			return nil, fmt.Errorf("directory entry without sport name")
		}
		if _, dup := c.byDirectory[info.Sport]; dup {
			return nil, fmt.Errorf("duplicate directory sport %q", info.Sport)
		}
		c.byDirectory[info.Sport] = len(c.directory)
		c.directory = append(c.directory, info)
	}

	for _, schema := range c.sports {
		if _, ok := c.byDirectory[schema.Sport]; ok {
			continue
		}
		c.byDirectory[schema.Sport] = len(c.directory)
		c.directory = append(c.directory, SportInfo{
			Sport:      schema.Sport,
			Federation: schema.Federation,
			Emoji:      schema.Emoji,
		})
	}

	return c, nil
}

// Lookup returns a copy of the schema registered under the exact sport name.
func (c *Catalog) Lookup(sport string) (SportSchema, error) {
	idx, ok := c.bySport[sport]
	if !ok {
		return SportSchema{}, fmt.Errorf("%w: %q", ErrSchemaNotFound, sport)
	}
	return c.sports[idx].Clone(), nil
}

// IsTeamSport reports false for unknown sports.
func (c *Catalog) IsTeamSport(sport string) bool {
	idx, ok := c.bySport[sport]
	return ok && c.sports[idx].Kind == KindTeam
}

// Sports lists sport names that have a schema, in catalog order.
func (c *Catalog) Sports() []string {
	return c.sportNames(func(SportSchema) bool { return true })
}

func (c *Catalog) TeamSports() []string {
	return c.sportNames(func(s SportSchema) bool { return s.Kind == KindTeam })
}

func (c *Catalog) IndividualSports() []string {
	return c.sportNames(func(s SportSchema) bool { return s.Kind == KindIndividual })
}

func (c *Catalog) sportNames(keep func(SportSchema) bool) []string {
	names := make([]string, 0, len(c.sports))
	for _, schema := range c.sports {
		if keep(schema) {
			names = append(names, schema.Sport)
		}
	}
	return names
}

// Directory lists every registrable sport.
func (c *Catalog) Directory() []SportInfo {
	out := make([]SportInfo, len(c.directory))
	copy(out, c.directory)
	return out
}

// Federation returns the governing body for a registrable sport.
func (c *Catalog) Federation(sport string) (string, bool) {
	idx, ok := c.byDirectory[sport]
	if !ok {
		return "", false
	}
	return c.directory[idx].Federation, true
}

func (c *Catalog) Emoji(sport string) string {
	idx, ok := c.byDirectory[sport]
	if !ok || c.directory[idx].Emoji == "" {
		return defaultEmoji
	}
	return c.directory[idx].Emoji
}

// Options builds the sport picker entries, emoji first.
func (c *Catalog) Options() []Option {
	options := make([]Option, 0, len(c.directory))
	for _, info := range c.directory {
		options = append(options, Option{
			Value: info.Sport,
			Label: c.Emoji(info.Sport) + " " + info.Sport,
		})
	}
	return options
}
