// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
	"github.com/TommyBurger4/ClubSportFrance/internal/config"
	"github.com/TommyBurger4/ClubSportFrance/internal/db"
	"github.com/TommyBurger4/ClubSportFrance/internal/geocoding"
	"github.com/TommyBurger4/ClubSportFrance/internal/ratelimit"
	"github.com/TommyBurger4/ClubSportFrance/internal/roster"
	"github.com/TommyBurger4/ClubSportFrance/internal/scheduler"
)

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(development bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if development {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path != "" {
		return catalog.LoadFile(cfg.Catalog.Path)
	}
	return catalog.Default()
}

// app holds everything the HTTP handlers are wired to.
type app struct {
	config   *config.Config
	db       *db.DB
	catalog  *catalog.Catalog
	rosters  *db.RosterStore
	registry *roster.Registry
	geocoder *geocoding.Client
	limiter  *ratelimit.Limiter
}

func newApp(cfg *config.Config) (*app, error) {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("load sport catalog: %w", err)
	}

	store := db.NewRosterStore(database)
	a := &app{
		config:   cfg,
		db:       database,
		catalog:  cat,
		rosters:  store,
		registry: roster.NewRegistry(store, cat),
	}

	if cfg.Geocoding.Enabled {
		a.geocoder = geocoding.NewClient(
			cfg.Geocoding.BaseURL,
			cfg.Geocoding.UserAgent,
			cfg.Geocoding.Timeout,
			geocoding.WithEmail(cfg.Geocoding.Email),
		)
		a.limiter = ratelimit.New(&ratelimit.Config{
			Cooldown:       cfg.Geocoding.Cooldown,
			GlobalCooldown: cfg.Geocoding.Cooldown,
			MaxPerHour:     cfg.Geocoding.MaxPerHour,
			MaxIPPerHour:   cfg.Geocoding.MaxIPPerHour,
		})
	}

	log.Info().
		Int("sports", len(cat.Sports())).
		Int("directory", len(cat.Directory())).
		Bool("geocoding", cfg.Geocoding.Enabled).
		Msg("Application initialized")
	return a, nil
}

func (a *app) Close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if err := a.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}

func startScheduler(a *app) error {
	if err := scheduler.Init(); err != nil {
		return err
	}
	svc, err := scheduler.ServiceInstance()
	if err != nil {
		return err
	}
	if err := scheduler.RegisterRosterAudit(svc, a.config.Scheduler.RosterAuditCron, a.rosters, a.catalog); err != nil {
		return fmt.Errorf("register roster audit: %w", err)
	}
	if err := scheduler.RegisterSessionSweep(svc, a.config.Scheduler.SessionSweepCron, a.registry, a.config.Scheduler.SessionIdle); err != nil {
		return fmt.Errorf("register session sweep: %w", err)
	}
	return scheduler.Start()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg.IsDevelopment())

	a, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	if err := startScheduler(a); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}()

	server := newServer(a)
	shutdownTimeout := time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
