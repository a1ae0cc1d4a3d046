// internal/api/clubs/handlers.go
package clubs

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TommyBurger4/ClubSportFrance/internal/api/apiutil"
	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
	"github.com/TommyBurger4/ClubSportFrance/internal/db"
	"github.com/TommyBurger4/ClubSportFrance/internal/geocoding"
	"github.com/TommyBurger4/ClubSportFrance/internal/models"
	"github.com/TommyBurger4/ClubSportFrance/internal/ratelimit"
	"github.com/TommyBurger4/ClubSportFrance/internal/roster"
)

const (
	clubsQueryTimeout = 5 * time.Second
	geocodeTimeout    = 15 * time.Second
)

// Geocoder resolves a postal address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, q geocoding.Query) (geocoding.Result, error)
}

// Dependencies are the collaborators the club handlers need. Geocoder and
// Limiter are optional; without a geocoder addresses are stored without
// coordinates.
type Dependencies struct {
	DB         *db.DB
	Catalog    *catalog.Catalog
	Registry   *roster.Registry
	Rosters    *db.RosterStore
	Geocoder   Geocoder
	Limiter    *ratelimit.Limiter
	TrustProxy bool
}

var (
	deps     *Dependencies
	depsOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Dependencies) {
	if d.DB == nil || d.Catalog == nil {
		return
	}
	depsOnce.Do(func() {
		deps = &d
	})
}

type clubRequest struct {
	Name        string         `json:"name"`
	Sport       string         `json:"sport"`
	Description string         `json:"description"`
	Address     models.Address `json:"address"`
	Contact     models.Contact `json:"contact"`
	Facilities  []string       `json:"facilities"`
}

// clubResponse adds display forms of the stored address and phone.
type clubResponse struct {
	models.Club
	DisplayAddress string `json:"displayAddress,omitempty"`
	DisplayPhone   string `json:"displayPhone,omitempty"`
}

func newClubResponse(club models.Club) clubResponse {
	resp := clubResponse{Club: club, DisplayAddress: club.Address.String()}
	if club.Contact.Phone != "" {
		resp.DisplayPhone = models.FormatPhone(club.Contact.Phone)
	}
	return resp
}

// GET /api/v1/clubs
func HandleListClubs(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	d := loadDeps()
	if d == nil {
		logger.Error().Msg("Club handlers not initialized")
		apiutil.WriteError(w, r, errors.New("club handlers not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	rows, err := d.DB.Queries.ListClubs(ctx, db.ListClubsParams{
		Sport:           apiutil.QueryValue(r, "sport"),
		Federation:      apiutil.QueryValue(r, "federation"),
		City:            apiutil.QueryValue(r, "city"),
		WithCoordinates: true,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list clubs")
		apiutil.WriteError(w, r, err)
		return
	}

	clubs := make([]clubResponse, 0, len(rows))
	for _, row := range rows {
		club, err := models.ClubFromDB(row)
		if err != nil {
			logger.Error().Err(err).Str("club_id", row.ID).Msg("Failed to decode club")
			apiutil.WriteError(w, r, err)
			return
		}
		clubs = append(clubs, newClubResponse(club))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"clubs": clubs}); err != nil {
		logger.Error().Err(err).Msg("Failed to write clubs response")
	}
}

// GET /api/v1/clubs/{clubID}
func HandleGetClub(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	d := loadDeps()
	if d == nil {
		logger.Error().Msg("Club handlers not initialized")
		apiutil.WriteError(w, r, errors.New("club handlers not initialized"))
		return
	}

	clubID, err := apiutil.PathValue(r, "clubID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	row, err := d.DB.Queries.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, r, apiutil.NotFound("Club not found"))
			return
		}
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to load club")
		apiutil.WriteError(w, r, err)
		return
	}

	club, err := models.ClubFromDB(row)
	if err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to decode club")
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newClubResponse(club)); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write club response")
	}
}

// PUT /api/v1/clubs/{clubID}
func HandleUpsertClub(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	d := loadDeps()
	if d == nil {
		logger.Error().Msg("Club handlers not initialized")
		apiutil.WriteError(w, r, errors.New("club handlers not initialized"))
		return
	}

	clubID, err := apiutil.PathValue(r, "clubID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	var req clubRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	club := models.Club{
		ID:          clubID,
		Name:        req.Name,
		Sport:       req.Sport,
		Description: req.Description,
		Address:     req.Address,
		Contact:     req.Contact,
		Facilities:  req.Facilities,
	}
	if err := club.Normalize(d.Catalog); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusUnprocessableEntity,
			Message: err.Error(),
			Err:     err,
		})
		return
	}

	previous, err := loadClub(r.Context(), d, clubID)
	if err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to load club")
		apiutil.WriteError(w, r, err)
		return
	}

	club.Coordinates = resolveCoordinates(r, d, club, previous)

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	params, err := club.UpsertParams()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := d.DB.Queries.UpsertClub(ctx, params); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to save club")
		apiutil.WriteError(w, r, err)
		return
	}
	saved, err := d.DB.Queries.GetClub(ctx, clubID)
	if err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to read saved club")
		apiutil.WriteError(w, r, err)
		return
	}

	sportChanged := previous == nil || previous.Sport != club.Sport
	if sportChanged {
		if schema, err := d.Catalog.Lookup(club.Sport); err == nil && d.Rosters != nil {
			created, err := d.Rosters.EnsureRoster(ctx, clubID, schema.Kind)
			if err != nil {
				logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to create club roster")
				apiutil.WriteError(w, r, err)
				return
			}
			if created {
				logger.Info().Str("club_id", clubID).Str("sport", club.Sport).Str("kind", string(schema.Kind)).Msg("Roster created")
			}
		}
		if previous != nil && d.Registry != nil && d.Registry.ChangeSport(clubID, club.Sport) {
			logger.Info().Str("club_id", clubID).Str("from", previous.Sport).Str("to", club.Sport).Msg("Open roster session moved to new sport")
		}
	}

	result, err := models.ClubFromDB(saved)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	status := http.StatusOK
	if previous == nil {
		status = http.StatusCreated
	}
	if err := apiutil.WriteJSON(w, status, newClubResponse(result)); err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to write club response")
	}
}

// resolveCoordinates keeps the stored coordinates while the address is
// unchanged and geocodes a new complete address, or an unchanged one that
// has no coordinates yet. Geocoding failures leave the club without
// coordinates rather than failing the save.
func resolveCoordinates(r *http.Request, d *Dependencies, club models.Club, previous *models.Club) *models.Coordinates {
	logger := log.Ctx(r.Context())

	if previous != nil && previous.Address == club.Address && previous.Coordinates != nil {
		return previous.Coordinates
	}
	if !club.Address.IsComplete() || d.Geocoder == nil {
		return nil
	}

	if d.Limiter != nil {
		ip := ratelimit.GetClientIP(r, d.TrustProxy)
		if result := d.Limiter.Allow(club.ID, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), club.ID, ip, result)
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), geocodeTimeout)
	defer cancel()

	result, err := d.Geocoder.Geocode(ctx, geocoding.Query{
		Street:     club.Address.Street,
		PostalCode: club.Address.PostalCode,
		City:       club.Address.City,
	})
	if err != nil {
		logger.Warn().Err(err).Str("club_id", club.ID).Str("address", club.Address.String()).Msg("Failed to geocode club address")
		return nil
	}
	return &models.Coordinates{Latitude: result.Latitude, Longitude: result.Longitude}
}

// loadClub returns nil, nil when the club does not exist yet.
func loadClub(ctx context.Context, d *Dependencies, clubID string) (*models.Club, error) {
	ctx, cancel := context.WithTimeout(ctx, clubsQueryTimeout)
	defer cancel()

	row, err := d.DB.Queries.GetClub(ctx, clubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	club, err := models.ClubFromDB(row)
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func loadDeps() *Dependencies {
	return deps
}
