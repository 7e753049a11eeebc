package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gamelounge/domain/event"
)

func Test_DMRepository_Insert_Bumps_Thread_Activity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	hub := newTestHub(t)
	threads := NewThreadRepository(db, testLogger())
	repo := NewDMRepository(db, hub, testLogger())

	thread, err := threads.Resolve(ctx, "alice", "bob")
	req.NoError(err)

	sub := hub.Subscribe(event.TableDirectMessages, thread.ID.String())
	defer sub.Close()

	sent := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return sent }

	msg, err := repo.Insert(ctx, thread.ID, "alice", "you up for a match?")
	req.NoError(err)
	req.Equal(thread.ID, msg.ThreadID)
	req.True(msg.CreatedAt.Equal(sent))

	select {
	case e := <-sub.C:
		inserted, ok := e.(event.DirectMessageInserted)
		req.True(ok)
		req.Equal(msg.ID, inserted.Row.ID)
		req.Equal(thread.ID.String(), e.FilterKey())
	case <-time.After(time.Second):
		t.Fatal("insert was not echoed on the feed")
	}

	refreshed, err := threads.Get(ctx, thread.ID)
	req.NoError(err)
	req.True(refreshed.LastMessageAt.Equal(sent))
}

func Test_DMRepository_History_Returns_Newest_Window_Ascending(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	threads := NewThreadRepository(db, testLogger())
	repo := NewDMRepository(db, newTestHub(t), testLogger())

	thread, err := threads.Resolve(ctx, "alice", "bob")
	req.NoError(err)

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clock := base
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, text := range []string{"one", "two", "three", "four"} {
		_, err := repo.Insert(ctx, thread.ID, "alice", text)
		req.NoError(err)
	}

	history, err := repo.History(ctx, thread.ID, 3)
	req.NoError(err)
	req.Len(history, 3)
	req.Equal("two", history[0].Content)
	req.Equal("three", history[1].Content)
	req.Equal("four", history[2].Content)

	// Another thread's history stays empty.
	other, err := threads.Resolve(ctx, "alice", "carol")
	req.NoError(err)
	history, err = repo.History(ctx, other.ID, 10)
	req.NoError(err)
	req.Empty(history)
}
