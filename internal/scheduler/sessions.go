package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const SessionSweepJobName = "roster_session_sweep"

// SessionRegistry is the part of roster.Registry the sweep needs.
type SessionRegistry interface {
	Idle(cutoff time.Time) []string
	Close(clubID string) bool
	Len() int
}

// SweepSessions drops the roster sessions nobody requested within idle of
// now. Sessions with a write pending are kept. It returns how many were
// dropped.
func SweepSessions(ctx context.Context, sessions SessionRegistry, now time.Time, idle time.Duration) int {
	closed := 0
	for _, clubID := range sessions.Idle(now.Add(-idle)) {
		if sessions.Close(clubID) {
			closed++
		}
	}
	if closed > 0 {
		log.Ctx(ctx).Info().
			Int("closed", closed).
			Int("open", sessions.Len()).
			Msg("Idle roster sessions closed")
	}
	return closed
}

// RegisterSessionSweep schedules SweepSessions on svc.
func RegisterSessionSweep(svc *Service, cronExpr string, sessions SessionRegistry, idle time.Duration) error {
	_, err := svc.AddJob(SessionSweepJobName, cronExpr, func(ctx context.Context) {
		SweepSessions(ctx, sessions, time.Now(), idle)
	})
	return err
}
