package roster

import (
	"fmt"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
)

// EntryStatus tells a UI whether a stored entry still resolves against the
// club's current sport schema.
type EntryStatus string

const (
	StatusValid    EntryStatus = "valid"
	StatusOrphaned EntryStatus = "orphaned"
	// StatusUnknown is reported when the sport has no schema at all.
	StatusUnknown EntryStatus = "unknown"
)

type TeamStatus struct {
	Team   Team        `json:"team"`
	Status EntryStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

type CategoryStatus struct {
	Category AcceptedCategory `json:"category"`
	Status   EntryStatus      `json:"status"`
	Reason   string           `json:"reason,omitempty"`
}

type Report struct {
	Sport       string           `json:"sport"`
	SchemaFound bool             `json:"schemaFound"`
	Kind        catalog.Kind     `json:"kind,omitempty"`
	Teams       []TeamStatus     `json:"teams,omitempty"`
	Categories  []CategoryStatus `json:"categories,omitempty"`
}

// Orphaned counts entries that no longer resolve.
func (r Report) Orphaned() int {
	n := 0
	for _, team := range r.Teams {
		if team.Status == StatusOrphaned {
			n++
		}
	}
	for _, category := range r.Categories {
		if category.Status == StatusOrphaned {
			n++
		}
	}
	return n
}

// Check re-validates every entry of r against schema. A nil schema marks all
// entries unknown. Nothing is removed.
func Check(sport string, schema *catalog.SportSchema, r Roster) Report {
	report := Report{
		Sport:       sport,
		SchemaFound: schema != nil,
		Kind:        r.Kind(),
	}
	for _, team := range r.teams {
		status, reason := teamStatus(schema, team)
		report.Teams = append(report.Teams, TeamStatus{Team: team, Status: status, Reason: reason})
	}
	for _, category := range r.categories {
		status, reason := categoryStatus(schema, category)
		report.Categories = append(report.Categories, CategoryStatus{Category: category.clone(), Status: status, Reason: reason})
	}
	return report
}

func teamStatus(schema *catalog.SportSchema, team Team) (EntryStatus, string) {
	if schema == nil {
		return StatusUnknown, "sport has no category structure"
	}
	if schema.Kind != catalog.KindTeam {
		return StatusOrphaned, fmt.Sprintf("%s is not a team sport", schema.Sport)
	}
	category, ok := schema.Category(team.AgeCategoryID)
	if !ok {
		return StatusOrphaned, fmt.Sprintf("category %q no longer exists", team.AgeCategoryID)
	}
	level, ok := category.Level(team.CompetitionLevelID)
	if !ok {
		return StatusOrphaned, fmt.Sprintf("level %q no longer exists under %q", team.CompetitionLevelID, team.AgeCategoryID)
	}
	if team.Division != "" && !level.HasDivision(team.Division) {
		return StatusOrphaned, fmt.Sprintf("division %q no longer exists under %q", team.Division, team.CompetitionLevelID)
	}
	if !category.AllowsGender(team.Gender) {
		return StatusOrphaned, fmt.Sprintf("gender %q no longer allowed for %q", team.Gender, team.AgeCategoryID)
	}
	return StatusValid, ""
}

func categoryStatus(schema *catalog.SportSchema, accepted AcceptedCategory) (EntryStatus, string) {
	if schema == nil {
		return StatusUnknown, "sport has no category structure"
	}
	if schema.Kind != catalog.KindIndividual {
		return StatusOrphaned, fmt.Sprintf("%s is not an individual sport", schema.Sport)
	}
	category, ok := schema.Category(accepted.AgeCategoryID)
	if !ok {
		return StatusOrphaned, fmt.Sprintf("category %q no longer exists", accepted.AgeCategoryID)
	}
	for _, g := range accepted.AcceptedGenders {
		if !category.AllowsGender(g) {
			return StatusOrphaned, fmt.Sprintf("gender %q no longer allowed for %q", g, accepted.AgeCategoryID)
		}
	}
	return StatusValid, ""
}
