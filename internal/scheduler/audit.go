package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/TommyBurger4/ClubSportFrance/internal/catalog"
	"github.com/TommyBurger4/ClubSportFrance/internal/db"
	"github.com/TommyBurger4/ClubSportFrance/internal/roster"
)

const RosterAuditJobName = "roster_audit"

type RosterLister interface {
	ListRosters(ctx context.Context) ([]db.StoredRoster, error)
}

type AuditSummary struct {
	Checked      int
	WithOrphans  int
	UnknownSport int
	Undecodable  int
}

// AuditRosters re-validates every stored roster against the catalog and logs
// the clubs whose entries no longer resolve. It never modifies a roster.
func AuditRosters(ctx context.Context, lister RosterLister, cat *catalog.Catalog) (AuditSummary, error) {
	if lister == nil || cat == nil {
		return AuditSummary{}, fmt.Errorf("roster audit requires a store and a catalog")
	}

	stored, err := lister.ListRosters(ctx)
	if err != nil {
		return AuditSummary{}, fmt.Errorf("list rosters: %w", err)
	}

	logger := log.Ctx(ctx)
	var summary AuditSummary
	for _, item := range stored {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Checked++

		r, err := item.Document.Roster()
		if err != nil {
			summary.Undecodable++
			logger.Error().Err(err).Str("club_id", item.ClubID).Msg("Stored roster is malformed")
			continue
		}

		var schema *catalog.SportSchema
		if found, err := cat.Lookup(item.Sport); err == nil {
			schema = &found
		}
		report := roster.Check(item.Sport, schema, r)

		switch {
		case !report.SchemaFound:
			if !r.IsEmpty() {
				summary.UnknownSport++
				logger.Warn().
					Str("club_id", item.ClubID).
					Str("sport", item.Sport).
					Int("entries", r.Len()).
					Msg("Roster sport has no category structure")
			}
		case report.Orphaned() > 0:
			summary.WithOrphans++
			logger.Warn().
				Str("club_id", item.ClubID).
				Str("club_name", item.ClubName).
				Str("sport", item.Sport).
				Int("orphaned", report.Orphaned()).
				Msg("Roster has orphaned entries")
		}
	}

	logger.Info().
		Int("checked", summary.Checked).
		Int("with_orphans", summary.WithOrphans).
		Int("unknown_sport", summary.UnknownSport).
		Int("undecodable", summary.Undecodable).
		Msg("Roster audit finished")
	return summary, nil
}

// RegisterRosterAudit schedules AuditRosters on svc.
func RegisterRosterAudit(svc *Service, cronExpr string, lister RosterLister, cat *catalog.Catalog) error {
	_, err := svc.AddJob(RosterAuditJobName, cronExpr, func(ctx context.Context) {
		if _, err := AuditRosters(ctx, lister, cat); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Roster audit failed")
		}
	})
	return err
}
