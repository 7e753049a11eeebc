package presence

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	domainpresence "gamelounge/domain/presence"
	"gamelounge/feed"
	"gamelounge/store"
)

func newPresenceRepo(t *testing.T, hub *feed.Hub) *store.PresenceRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return store.NewPresenceRepository(db, hub, slog.Default())
}

func Test_Aggregator_Refresh_Counts_Distinct_Users_In_Window(t *testing.T) {
	req := require.New(t)
	hub := feed.NewHub(slog.Default(), 64)
	repo := newPresenceRepo(t, hub)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	req.NoError(repo.Heartbeat("alice", now.Add(-time.Minute)))
	req.NoError(repo.Heartbeat("bob", now.Add(-4*time.Minute)))
	req.NoError(repo.Heartbeat("carol", now.Add(-6*time.Minute)))

	// Repeated beats from the same user count once.
	req.NoError(repo.Heartbeat("alice", now.Add(-30*time.Second)))

	agg := NewAggregator(repo, hub, slog.Default())
	agg.now = func() time.Time { return now }

	req.Equal(0, agg.OnlineCount())
	agg.Refresh()
	req.Equal(2, agg.OnlineCount())
}

func Test_Aggregator_Run_Reacts_To_Presence_Events(t *testing.T) {
	req := require.New(t)
	hub := feed.NewHub(slog.Default(), 64)
	repo := newPresenceRepo(t, hub)

	agg := NewAggregator(repo, hub, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- agg.Run(ctx) }()

	// Give the run loop a beat to subscribe before publishing.
	req.Eventually(func() bool {
		return hub.Subscribers("presence") == 1
	}, time.Second, 10*time.Millisecond)

	req.NoError(repo.Heartbeat("alice", time.Now()))

	// The heartbeat's feed event triggers a refresh without waiting for
	// the poll tick.
	req.Eventually(func() bool {
		return agg.OnlineCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	req.NoError(<-done)
}

func Test_Tracker_Beat_Stamps_Liveness(t *testing.T) {
	req := require.New(t)
	hub := feed.NewHub(slog.Default(), 64)
	repo := newPresenceRepo(t, hub)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(repo, slog.Default())
	tracker.now = func() time.Time { return now }

	tracker.Beat("alice")

	record, err := repo.Get("alice")
	req.NoError(err)
	req.True(record.OnlineAt(now.Add(4 * time.Minute)))
	req.False(record.OnlineAt(now.Add(domainpresence.OnlineWindow)))
}
