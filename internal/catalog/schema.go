package catalog

import (
	"fmt"
	"slices"
)

// Kind selects the roster shape a sport uses.
type Kind string

const (
	KindTeam       Kind = "team"
	KindIndividual Kind = "individual"
)

func (k Kind) Valid() bool {
	return k == KindTeam || k == KindIndividual
}

// Gender values are persisted verbatim on club records.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderMixed  Gender = "Mixte"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderMixed:
		return true
	default:
		return false
	}
}

// Label returns the display name shown next to a team or checkbox.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Masculin"
	case GenderFemale:
		return "Feminin"
	case GenderMixed:
		return "Mixte"
	default:
		return string(g)
	}
}

func ParseGender(raw string) (Gender, error) {
	g := Gender(raw)
	if !g.Valid() {
		return "", fmt.Errorf("unknown gender %q", raw)
	}
	return g, nil
}

type CompetitionLevel struct {
	ID        string   `yaml:"id" json:"id"`
	Label     string   `yaml:"label" json:"label"`
	Divisions []string `yaml:"divisions,omitempty" json:"divisions,omitempty"`
}

func (l CompetitionLevel) HasDivision(division string) bool {
	return slices.Contains(l.Divisions, division)
}

type AgeCategory struct {
	ID      string             `yaml:"id" json:"id"`
	Label   string             `yaml:"label" json:"label"`
	MinAge  *int               `yaml:"min_age,omitempty" json:"minAge,omitempty"`
	MaxAge  *int               `yaml:"max_age,omitempty" json:"maxAge,omitempty"`
	Genders []Gender           `yaml:"genders" json:"genders"`
	Levels  []CompetitionLevel `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// Level resolves a competition level declared under this category.
func (c AgeCategory) Level(id string) (CompetitionLevel, bool) {
	for _, level := range c.Levels {
		if level.ID == id {
			return level, true
		}
	}
	return CompetitionLevel{}, false
}

func (c AgeCategory) AllowsGender(g Gender) bool {
	return slices.Contains(c.Genders, g)
}

// AgeRange formats the bracket the way club pages display it.
func (c AgeCategory) AgeRange() string {
	switch {
	case c.MinAge != nil && c.MaxAge != nil:
		return fmt.Sprintf("%d-%d ans", *c.MinAge, *c.MaxAge)
	case c.MinAge != nil:
		return fmt.Sprintf("%d+ ans", *c.MinAge)
	case c.MaxAge != nil:
		return fmt.Sprintf("Jusqu'a %d ans", *c.MaxAge)
	default:
		return ""
	}
}

type SportSchema struct {
	Sport      string        `yaml:"sport" json:"sport"`
	Federation string        `yaml:"federation" json:"federation"`
	Emoji      string        `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	Kind       Kind          `yaml:"kind" json:"kind"`
	Categories []AgeCategory `yaml:"categories" json:"categories"`
}

// Category resolves an age category by id.
func (s SportSchema) Category(id string) (AgeCategory, bool) {
	for _, category := range s.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return AgeCategory{}, false
}

func (s SportSchema) IsTeamSport() bool {
	return s.Kind == KindTeam
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s SportSchema) Clone() SportSchema {
	out := s
	out.Categories = make([]AgeCategory, len(s.Categories))
	for i, category := range s.Categories {
		c := category
		c.MinAge = cloneInt(category.MinAge)
		c.MaxAge = cloneInt(category.MaxAge)
		c.Genders = slices.Clone(category.Genders)
		if category.Levels != nil {
			c.Levels = make([]CompetitionLevel, len(category.Levels))
			for j, level := range category.Levels {
				l := level
				l.Divisions = slices.Clone(level.Divisions)
				c.Levels[j] = l
			}
		}
		out.Categories[i] = c
	}
	return out
}

func (s SportSchema) validate() error {
	if s.Sport == "" {
		return fmt.Errorf("sport name is required")
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("sport %q: unknown kind %q", s.Sport, s.Kind)
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("sport %q: at least one category is required", s.Sport)
	}

	seen := make(map[string]struct{}, len(s.Categories))
	for _, category := range s.Categories {
		if category.ID == "" {
			return fmt.Errorf("sport %q: category id is required", s.Sport)
		}
		if _, dup := seen[category.ID]; dup {
			return fmt.Errorf("sport %q: duplicate category id %q", s.Sport, category.ID)
		}
		seen[category.ID] = struct{}{}
		if err := category.validate(s.Kind); err != nil {
			return fmt.Errorf("sport %q: category %q: %w", s.Sport, category.ID, err)
		}
	}
	return nil
}

func (c AgeCategory) validate(kind Kind) error {
	if c.Label == "" {
		return fmt.Errorf("label is required")
	}
	if c.MinAge != nil && *c.MinAge < 0 {
		return fmt.Errorf("min_age must be 0 or greater")
	}
	if c.MaxAge != nil && *c.MaxAge < 0 {
		return fmt.Errorf("max_age must be 0 or greater")
	}
	if c.MinAge != nil && c.MaxAge != nil && *c.MinAge > *c.MaxAge {
		return fmt.Errorf("min_age %d is greater than max_age %d", *c.MinAge, *c.MaxAge)
	}

	if len(c.Genders) == 0 {
		return fmt.Errorf("at least one gender is required")
	}
	genders := make(map[Gender]struct{}, len(c.Genders))
	for _, g := range c.Genders {
		if !g.Valid() {
			return fmt.Errorf("unknown gender %q", g)
		}
		if _, dup := genders[g]; dup {
			return fmt.Errorf("duplicate gender %q", g)
		}
		genders[g] = struct{}{}
	}

	switch kind {
	case KindIndividual:
		if len(c.Levels) > 0 {
			return fmt.Errorf("individual sports cannot declare competition levels")
		}
	case KindTeam:
		if len(c.Levels) == 0 {
			return fmt.Errorf("team sports require at least one competition level")
		}
		levels := make(map[string]struct{}, len(c.Levels))
		for _, level := range c.Levels {
			if level.ID == "" || level.Label == "" {
				return fmt.Errorf("competition level id and label are required")
			}
			if _, dup := levels[level.ID]; dup {
				return fmt.Errorf("duplicate competition level id %q", level.ID)
			}
			levels[level.ID] = struct{}{}

			divisions := make(map[string]struct{}, len(level.Divisions))
			for _, division := range level.Divisions {
				if division == "" {
					return fmt.Errorf("level %q: empty division label", level.ID)
				}
				if _, dup := divisions[division]; dup {
					return fmt.Errorf("level %q: duplicate division %q", level.ID, division)
				}
				divisions[division] = struct{}{}
			}
		}
	}
	return nil
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
