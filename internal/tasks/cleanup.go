// Package tasks contains the background sweeps that prune expired
// persisted auth state.  The sweep bodies are stateless functions
// taking "now" as an explicit parameter so tests can drive them
// directly; Start wires them to wall-clock tickers.
package tasks

import (
	"context"
	"log"
	"time"
)

// TokenSweeper is the ledger surface the daily sweep needs.
type TokenSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper is the session surface both sweeps need.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// staleAfter is the idle window after which a session is deactivated
// by the hourly sweep.  Independent from the 30-day creation-based
// expiry on the session row; both rules apply.
const staleAfter = 30 * 24 * time.Hour

// CleanupExpired is the daily sweep: it deletes ledger entries that
// are expired or spent and session rows that are expired or inactive.
// Deletion is the final cleanup step; rows reach it only after the
// soft flags or expiries have already made them unusable, which is
// what makes repeated runs idempotent.  Errors are logged, never
// propagated.
func CleanupExpired(ctx context.Context, tokens TokenSweeper, sessions SessionSweeper, now time.Time) {
	deletedTokens, err := tokens.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("cleanup: deleting expired refresh tokens: %v", err)
	}
	deletedSessions, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("cleanup: deleting expired sessions: %v", err)
	}
	log.Printf("cleanup: completed, %d tokens and %d sessions deleted", deletedTokens, deletedSessions)
}

// DeactivateStaleSessions is the hourly sweep: sessions not used for
// staleAfter are marked inactive.  Errors are logged, never
// propagated.
func DeactivateStaleSessions(ctx context.Context, sessions SessionSweeper, now time.Time) {
	updated, err := sessions.DeactivateStale(ctx, now.Add(-staleAfter))
	if err != nil {
		log.Printf("cleanup: deactivating stale sessions: %v", err)
		return
	}
	log.Printf("cleanup: %d stale sessions deactivated", updated)
}

// Start runs both sweeps on their schedules until ctx is cancelled.
// The two tickers are independent; a failing sweep never stops the
// loop or blocks the other schedule.
func Start(ctx context.Context, tokens TokenSweeper, sessions SessionSweeper) {
	daily := time.NewTicker(24 * time.Hour)
	hourly := time.NewTicker(time.Hour)

	go func() {
		defer daily.Stop()
		defer hourly.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-daily.C:
				CleanupExpired(ctx, tokens, sessions, t.UTC())
			case t := <-hourly.C:
				DeactivateStaleSessions(ctx, sessions, t.UTC())
			}
		}
	}()
}
