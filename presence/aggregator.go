package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gamelounge/domain/event"
	domainpresence "gamelounge/domain/presence"
	"gamelounge/feed"
	"gamelounge/store"
)

// Aggregator maintains the cached online count consumed by the chat and
// community views. It recomputes on a fixed poll and additionally refreshes
// when a presence event lands, so a heartbeat crossing the window boundary
// shows up without waiting a full poll cycle.
type Aggregator struct {
	mu     sync.RWMutex
	repo   store.IPresenceRepository
	hub    *feed.Hub
	log    *slog.Logger
	window time.Duration
	poll   time.Duration
	now    func() time.Time
	count  int
}

func NewAggregator(repo store.IPresenceRepository, hub *feed.Hub, log *slog.Logger) *Aggregator {
	return &Aggregator{
		repo:   repo,
		hub:    hub,
		log:    log,
		window: domainpresence.OnlineWindow,
		poll:   domainpresence.PollInterval,
		now:    time.Now,
	}
}

// OnlineCount returns the cached distinct-user count inside the liveness
// window.
func (a *Aggregator) OnlineCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.count
}

func (a *Aggregator) Run(ctx context.Context) error {
	sub := a.hub.Subscribe(event.TablePresence, "")
	defer sub.Close()

	a.Refresh()
	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Debug("Stopping presence aggregator")
			return nil
		case <-ticker.C:
			a.Refresh()
		case _, ok := <-sub.C:
			if !ok {
				return nil
			}
			a.Refresh()
		}
	}
}

// Refresh recomputes the count from the store.
func (a *Aggregator) Refresh() {
	count, err := a.repo.OnlineCount(a.now(), a.window)
	if err != nil {
		a.log.Warn("Online count refresh failed, keeping last value", "err", err)
		return
	}
	a.mu.Lock()
	a.count = count
	a.mu.Unlock()
}
