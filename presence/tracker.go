// Package presence runs the heartbeat side of liveness: per-session beat
// loops and the portal-wide online-count aggregation.
package presence

import (
	"context"
	"log/slog"
	"time"

	domainpresence "gamelounge/domain/presence"
	"gamelounge/store"
)

// Tracker writes heartbeats. Beats are best-effort: a failed write is
// logged and silently retried on the next tick, never surfaced.
type Tracker struct {
	repo store.IPresenceRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewTracker(repo store.IPresenceRepository, log *slog.Logger) *Tracker {
	return &Tracker{repo: repo, log: log, now: time.Now}
}

// Beat stamps one heartbeat for userID.
func (t *Tracker) Beat(userID string) {
	if err := t.repo.Heartbeat(userID, t.now()); err != nil {
		t.log.Warn("Heartbeat write failed, retrying next tick", "user", userID, "err", err)
	}
}

// RunSession beats on the heartbeat interval while the session context is
// alive, starting with an immediate beat so the user shows online right
// after connecting.
func (t *Tracker) RunSession(ctx context.Context, userID string) {
	t.Beat(userID)
	ticker := time.NewTicker(domainpresence.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Beat(userID)
		}
	}
}
