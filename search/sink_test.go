package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gamelounge/domain/event"
	"gamelounge/feed"
)

func Test_SinkWorker_Indexes_Feed_Events(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)
	hub := feed.NewHub(slog.Default(), 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- NewSinkWorker(index, hub, slog.Default()).Run(ctx) }()

	req.Eventually(func() bool {
		return hub.Subscribers(event.TableChatMessages) == 1
	}, time.Second, 10*time.Millisecond)

	msg := message("alice", "anyone up for ranked")
	hub.Publish(event.ChatMessageInserted{Row: msg})

	req.Eventually(func() bool {
		hits, err := index.Search(ctx, "ranked", 10)
		return err == nil && len(hits) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// A soft delete flowing through the feed removes the document.
	msg.IsDeleted = true
	hub.Publish(event.ChatMessageUpdated{Row: msg})

	req.Eventually(func() bool {
		hits, err := index.Search(ctx, "ranked", 10)
		return err == nil && len(hits) == 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	req.NoError(<-done)
}
