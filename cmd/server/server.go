// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/TommyBurger4/ClubSportFrance/internal/api"
	"github.com/TommyBurger4/ClubSportFrance/internal/api/apiutil"
	"github.com/TommyBurger4/ClubSportFrance/internal/api/clubs"
	"github.com/TommyBurger4/ClubSportFrance/internal/api/rosters"
	"github.com/TommyBurger4/ClubSportFrance/internal/api/sports"
)

func newServer(a *app) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithCORS(a.config.CORS.AllowedOrigins),
	)

	initHandlers(a)
	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func initHandlers(a *app) {
	sports.InitHandlers(a.catalog)

	deps := clubs.Dependencies{
		DB:         a.db,
		Catalog:    a.catalog,
		Registry:   a.registry,
		Rosters:    a.rosters,
		Limiter:    a.limiter,
		TrustProxy: a.config.App.TrustProxy,
	}
	if a.geocoder != nil {
		deps.Geocoder = a.geocoder
	}
	clubs.InitHandlers(deps)

	rosters.InitHandlers(a.db.Queries, a.registry)
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Sport catalog routes
	mux.HandleFunc("GET /api/v1/sports", sports.HandleSportsList)
	mux.HandleFunc("GET /api/v1/sports/{sport}", sports.HandleSportSchema)

	// Club routes
	mux.HandleFunc("GET /api/v1/clubs", clubs.HandleListClubs)
	mux.HandleFunc("GET /api/v1/clubs/{clubID}", clubs.HandleGetClub)
	mux.HandleFunc("PUT /api/v1/clubs/{clubID}", clubs.HandleUpsertClub)

	// Roster routes
	mux.HandleFunc("GET /api/v1/clubs/{clubID}/roster", rosters.HandleGetRoster)
	mux.HandleFunc("POST /api/v1/clubs/{clubID}/roster/teams", rosters.HandleAddTeam)
	mux.HandleFunc("DELETE /api/v1/clubs/{clubID}/roster/teams/{teamID}", rosters.HandleRemoveTeam)
	mux.HandleFunc("POST /api/v1/clubs/{clubID}/roster/categories/{categoryID}/toggle", rosters.HandleToggleCategory)
	mux.HandleFunc("POST /api/v1/clubs/{clubID}/roster/categories/{categoryID}/genders/{gender}/toggle", rosters.HandleToggleGender)
}
