// Package roster keeps a club's declared teams or accepted categories
// consistent with the sport taxonomy and persists every change as a whole
// document.
package roster

import (
	"fmt"
	"slices"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
)

// Team is one declared team of a team-sport club. The labels are display
// copies; the ids are authoritative.
type Team struct {
	ID                    string         `json:"id"`
	AgeCategoryID         string         `json:"ageCategoryId"`
	AgeCategoryLabel      string         `json:"ageCategoryLabel,omitempty"`
	CompetitionLevelID    string         `json:"competitionLevelId"`
	CompetitionLevelLabel string         `json:"competitionLevelLabel,omitempty"`
	Division              string         `json:"division,omitempty"`
	Gender                catalog.Gender `json:"gender"`
}

// AcceptedCategory is one age category an individual-sport club accepts.
type AcceptedCategory struct {
	AgeCategoryID    string           `json:"ageCategoryId"`
	AgeCategoryLabel string           `json:"ageCategoryLabel,omitempty"`
	AcceptedGenders  []catalog.Gender `json:"acceptedGenders"`
}

func (a AcceptedCategory) clone() AcceptedCategory {
	a.AcceptedGenders = slices.Clone(a.AcceptedGenders)
	return a
}

// Roster holds either teams or accepted categories, never both. The zero
// value is an empty roster whose kind is not yet known.
type Roster struct {
	kind       catalog.Kind
	teams      []Team
	categories []AcceptedCategory
}

func NewTeamRoster(teams ...Team) Roster {
	return Roster{kind: catalog.KindTeam, teams: slices.Clone(teams)}
}

func NewIndividualRoster(categories ...AcceptedCategory) Roster {
	r := Roster{kind: catalog.KindIndividual}
	for _, category := range categories {
		r.categories = append(r.categories, category.clone())
	}
	return r
}

// Empty returns an empty roster of the given kind. An empty kind leaves the
// shape undecided.
func Empty(kind catalog.Kind) Roster {
	return Roster{kind: kind}
}

func (r Roster) Kind() catalog.Kind { return r.kind }

func (r Roster) Len() int { return len(r.teams) + len(r.categories) }

func (r Roster) IsEmpty() bool { return r.Len() == 0 }

// Teams returns a copy of the declared teams, nil for individual rosters.
func (r Roster) Teams() []Team {
	if len(r.teams) == 0 {
		return nil
	}
	return slices.Clone(r.teams)
}

// AcceptedCategories returns a deep copy, nil for team rosters.
func (r Roster) AcceptedCategories() []AcceptedCategory {
	if len(r.categories) == 0 {
		return nil
	}
	out := make([]AcceptedCategory, len(r.categories))
	for i, category := range r.categories {
		out[i] = category.clone()
	}
	return out
}

func (r Roster) Team(id string) (Team, bool) {
	for _, team := range r.teams {
		if team.ID == id {
			return team, true
		}
	}
	return Team{}, false
}

func (r Roster) AcceptedCategory(ageCategoryID string) (AcceptedCategory, bool) {
	for _, category := range r.categories {
		if category.AgeCategoryID == ageCategoryID {
			return category.clone(), true
		}
	}
	return AcceptedCategory{}, false
}

func (r Roster) clone() Roster {
	out := Roster{kind: r.kind, teams: slices.Clone(r.teams)}
	for _, category := range r.categories {
		out.categories = append(out.categories, category.clone())
	}
	return out
}

func (r Roster) withTeam(team Team) Roster {
	out := r.clone()
	out.teams = append(out.teams, team)
	return out
}

func (r Roster) withoutTeam(id string) Roster {
	out := Roster{kind: r.kind}
	for _, team := range r.teams {
		if team.ID != id {
			out.teams = append(out.teams, team)
		}
	}
	return out
}

func (r Roster) withCategory(category AcceptedCategory) Roster {
	out := r.clone()
	out.categories = append(out.categories, category.clone())
	return out
}

func (r Roster) withoutCategory(ageCategoryID string) Roster {
	out := Roster{kind: r.kind}
	for _, category := range r.categories {
		if category.AgeCategoryID != ageCategoryID {
			out.categories = append(out.categories, category.clone())
		}
	}
	return out
}

// withGenders replaces the accepted genders of one category in place,
// keeping the category's position.
func (r Roster) withGenders(ageCategoryID string, genders []catalog.Gender) Roster {
	out := r.clone()
	for i := range out.categories {
		if out.categories[i].AgeCategoryID == ageCategoryID {
			out.categories[i].AcceptedGenders = slices.Clone(genders)
		}
	}
	return out
}

// Document is the persisted form of a roster, tagged by kind.
type Document struct {
	Kind               catalog.Kind       `json:"kind"`
	Teams              []Team             `json:"teams,omitempty"`
	AcceptedCategories []AcceptedCategory `json:"acceptedCategories,omitempty"`
}

func (r Roster) Document() Document {
	return Document{
		Kind:               r.kind,
		Teams:              r.Teams(),
		AcceptedCategories: r.AcceptedCategories(),
	}
}

// Roster decodes a stored document, rejecting shapes that mix both entry
// kinds or repeat ids.
func (d Document) Roster() (Roster, error) {
	switch d.Kind {
	case catalog.KindTeam:
		if len(d.AcceptedCategories) > 0 {
			return Roster{}, fmt.Errorf("team roster document holds accepted categories")
		}
		seen := make(map[string]struct{}, len(d.Teams))
		for _, team := range d.Teams {
			if team.ID == "" {
				return Roster{}, fmt.Errorf("team without id")
			}
			if _, dup := seen[team.ID]; dup {
				return Roster{}, fmt.Errorf("duplicate team id %q", team.ID)
			}
			seen[team.ID] = struct{}{}
		}
		return NewTeamRoster(d.Teams...), nil
	case catalog.KindIndividual:
		if len(d.Teams) > 0 {
			return Roster{}, fmt.Errorf("individual roster document holds teams")
		}
		seen := make(map[string]struct{}, len(d.AcceptedCategories))
		for _, category := range d.AcceptedCategories {
			if _, dup := seen[category.AgeCategoryID]; dup {
				return Roster{}, fmt.Errorf("duplicate accepted category %q", category.AgeCategoryID)
			}
			seen[category.AgeCategoryID] = struct{}{}
			if len(category.AcceptedGenders) == 0 {
				return Roster{}, fmt.Errorf("accepted category %q has no genders", category.AgeCategoryID)
			}
		}
		return NewIndividualRoster(d.AcceptedCategories...), nil
	case "":
		if len(d.Teams) > 0 || len(d.AcceptedCategories) > 0 {
			return Roster{}, fmt.Errorf("roster document without kind holds entries")
		}
		return Roster{}, nil
	default:
		return Roster{}, fmt.Errorf("unknown roster kind %q", d.Kind)
	}
}
