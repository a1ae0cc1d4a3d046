// internal/api/rosters/handlers.go
package rosters

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
	"github.com/TommyBurger4/ClubSportFrance/internal/roster"
)

const rostersQueryTimeout = 5 * time.Second

var (
	queries     *db.Queries
	registry    *roster.Registry
	handlerOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries, r *roster.Registry) {
	if q == nil || r == nil {
		return
	}
	handlerOnce.Do(func() {
		queries = q
		registry = r
	})
}

type rosterResponse struct {
	ClubID  string `json:"clubId"`
	Pending bool   `json:"pending"`
	roster.Report
}

type toggleCategoryRequest struct {
	Label string `json:"label"`
}

type toggleResponse struct {
	AgeCategoryID string `json:"ageCategoryId"`
	Accepted      bool   `json:"accepted"`
}

// GET /api/v1/clubs/{clubID}/roster
func HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	session, ok := openSession(w, r)
	if !ok {
		return
	}
	writeRoster(w, r, session, http.StatusOK)
}

// POST /api/v1/clubs/{clubID}/roster/teams
func HandleAddTeam(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req roster.AddTeamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	session, ok := openSession(w, r)
	if !ok {
		return
	}

	team, err := session.AddTeam(r.Context(), req)
	if err != nil {
		writeRosterError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, team); err != nil {
		logger.Error().Err(err).Str("team_id", team.ID).Msg("Failed to write team response")
	}
}

// DELETE /api/v1/clubs/{clubID}/roster/teams/{teamID}
func HandleRemoveTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := apiutil.PathValue(r, "teamID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	session, ok := openSession(w, r)
	if !ok {
		return
	}

	if err := session.RemoveTeam(r.Context(), teamID); err != nil {
		writeRosterError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/clubs/{clubID}/roster/categories/{categoryID}/toggle
func HandleToggleCategory(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	categoryID, err := apiutil.PathValue(r, "categoryID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	// The body is optional.
	var req toggleCategoryRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			apiutil.WriteError(w, r, apiutil.BadRequest(err))
			return
		}
	}

	session, ok := openSession(w, r)
	if !ok {
		return
	}

	accepted, err := session.ToggleCategory(r.Context(), categoryID, req.Label)
	if err != nil {
		writeRosterError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toggleResponse{AgeCategoryID: categoryID, Accepted: accepted}); err != nil {
		logger.Error().Err(err).Str("age_category_id", categoryID).Msg("Failed to write toggle response")
	}
}

// POST /api/v1/clubs/{clubID}/roster/categories/{categoryID}/genders/{gender}/toggle
func HandleToggleGender(w http.ResponseWriter, r *http.Request) {
	categoryID, err := apiutil.PathValue(r, "categoryID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}
	gender, err := apiutil.PathValue(r, "gender")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return
	}

	session, ok := openSession(w, r)
	if !ok {
		return
	}

	if err := session.ToggleGender(r.Context(), categoryID, catalog.Gender(gender)); err != nil {
		writeRosterError(w, r, err)
		return
	}
	writeRoster(w, r, session, http.StatusOK)
}

// openSession resolves the club's current sport and returns its registry
// session. It writes the error response itself when it returns false.
func openSession(w http.ResponseWriter, r *http.Request) (*roster.Session, bool) {
	logger := log.Ctx(r.Context())

	if queries == nil || registry == nil {
		logger.Error().Msg("Roster handlers not initialized")
		apiutil.WriteError(w, r, errors.New("roster handlers not initialized"))
		return nil, false
	}

	clubID, err := apiutil.PathValue(r, "clubID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), rostersQueryTimeout)
	defer cancel()

	club, err := queries.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, r, apiutil.NotFound("Club not found"))
			return nil, false
		}
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to load club")
		apiutil.WriteError(w, r, err)
		return nil, false
	}

	session, err := registry.Session(ctx, clubID, club.Sport)
	if err != nil {
		logger.Error().Err(err).Str("club_id", clubID).Msg("Failed to open roster session")
		apiutil.WriteError(w, r, err)
		return nil, false
	}
	return session, true
}

func writeRoster(w http.ResponseWriter, r *http.Request, session *roster.Session, status int) {
	resp := rosterResponse{
		ClubID:  session.ClubID(),
		Pending: session.Pending(),
		Report:  session.Report(),
	}
	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("club_id", session.ClubID()).Msg("Failed to write roster response")
	}
}

// writeRosterError maps session errors to HTTP statuses.
func writeRosterError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *roster.ValidationError
	var notFoundErr *roster.NotFoundError
	var persistenceErr *roster.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusUnprocessableEntity,
			Message: validationErr.Error(),
			Err:     apiutil.FieldError{Field: validationErr.Field, Reason: validationErr.Reason},
		})
	case errors.As(err, &notFoundErr):
		apiutil.WriteError(w, r, apiutil.NotFound(notFoundErr.Error()))
	case errors.Is(err, roster.ErrWriteInFlight):
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusConflict,
			Message: "A roster change is already being saved",
			Err:     err,
		})
	case errors.Is(err, catalog.ErrSchemaNotFound):
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusConflict,
			Message: "The club's sport has no category structure",
			Err:     err,
		})
	case errors.As(err, &persistenceErr):
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusBadGateway,
			Message: persistenceErr.Reason,
			Err:     err,
		})
	default:
		apiutil.WriteError(w, r, err)
	}
}
