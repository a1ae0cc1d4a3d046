// internal/api/sports/handlers.go
package sports

import (
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/TommyBurger4/ClubSportFrance/internal/api/apiutil"
	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
)

var (
	sportCatalog *catalog.Catalog
	catalogOnce  sync.Once
)

type sportSummary struct {
	Sport      string       `json:"sport"`
	Federation string       `json:"federation"`
	Emoji      string       `json:"emoji"`
	Kind       catalog.Kind `json:"kind,omitempty"`
	HasSchema  bool         `json:"hasSchema"`
}

type genderOption struct {
	ID    catalog.Gender `json:"id"`
	Label string         `json:"label"`
}

type categoryView struct {
	catalog.AgeCategory
	AgeRange      string         `json:"ageRange,omitempty"`
	GenderOptions []genderOption `json:"genderOptions"`
}

type schemaResponse struct {
	Sport      string         `json:"sport"`
	Federation string         `json:"federation"`
	Emoji      string         `json:"emoji"`
	Kind       catalog.Kind   `json:"kind"`
	Categories []categoryView `json:"categories"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *catalog.Catalog) {
	if c == nil {
		return
	}
	catalogOnce.Do(func() {
		sportCatalog = c
	})
}

// GET /api/v1/sports
func HandleSportsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadCatalog()
	if c == nil {
		logger.Error().Msg("Sport catalog not initialized")
		apiutil.WriteError(w, r, errors.New("sport catalog not initialized"))
		return
	}

	kind, err := apiutil.QueryEnum(r, "kind", string(catalog.KindTeam), string(catalog.KindIndividual))
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	sports := make([]sportSummary, 0, len(c.Directory()))
	for _, info := range c.Directory() {
		summary := sportSummary{
			Sport:      info.Sport,
			Federation: info.Federation,
			Emoji:      c.Emoji(info.Sport),
		}
		if schema, err := c.Lookup(info.Sport); err == nil {
			summary.Kind = schema.Kind
			summary.HasSchema = true
		}
		if kind != "" && string(summary.Kind) != kind {
			continue
		}
		sports = append(sports, summary)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"sports": sports}); err != nil {
		logger.Error().Err(err).Msg("Failed to write sports response")
	}
}

// GET /api/v1/sports/{sport}
func HandleSportSchema(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	c := loadCatalog()
	if c == nil {
		logger.Error().Msg("Sport catalog not initialized")
		apiutil.WriteError(w, r, errors.New("sport catalog not initialized"))
		return
	}

	sport, err := apiutil.PathValue(r, "sport")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	schema, err := c.Lookup(sport)
	if err != nil {
		if errors.Is(err, catalog.ErrSchemaNotFound) {
			apiutil.WriteError(w, r, apiutil.NotFound("No category structure for sport "+sport))
			return
		}
		apiutil.WriteError(w, r, err)
		return
	}

	resp := schemaResponse{
		Sport:      schema.Sport,
		Federation: schema.Federation,
		Emoji:      c.Emoji(schema.Sport),
		Kind:       schema.Kind,
		Categories: make([]categoryView, 0, len(schema.Categories)),
	}
	for _, category := range schema.Categories {
		view := categoryView{
			AgeCategory:   category,
			AgeRange:      category.AgeRange(),
			GenderOptions: make([]genderOption, 0, len(category.Genders)),
		}
		for _, gender := range category.Genders {
			view.GenderOptions = append(view.GenderOptions, genderOption{ID: gender, Label: gender.Label()})
		}
		resp.Categories = append(resp.Categories, view)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Str("sport", sport).Msg("Failed to write sport schema response")
	}
}

func loadCatalog() *catalog.Catalog {
	return sportCatalog
}
