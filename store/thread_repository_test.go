package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gamelounge/domain/dm"
	errs "gamelounge/errors"
)

func Test_ThreadRepository_Resolve_Is_Idempotent_Across_Directions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewThreadRepository(openTestDB(t), testLogger())

	first, err := repo.Resolve(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(dm.CanonicalPairKey("alice", "bob"), first.PairKey)

	// Same pair from the other side resolves to the same thread.
	second, err := repo.Resolve(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(first.ID, second.ID)

	// A different pair gets its own thread.
	other, err := repo.Resolve(ctx, "alice", "carol")
	req.NoError(err)
	req.NotEqual(first.ID, other.ID)
}

func Test_ThreadRepository_Resolve_Concurrent_First_Contact(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewThreadRepository(db, testLogger())

	// Both sides open the thread at the same time; exactly one insert wins
	// and both callers end up on the winning row.
	var wg sync.WaitGroup
	results := make([]dm.Thread, 2)
	errors := make([]error, 2)
	for i, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		wg.Add(1)
		go func(i int, caller, other string) {
			defer wg.Done()
			results[i], errors[i] = repo.Resolve(ctx, caller, other)
		}(i, pair[0], pair[1])
	}
	wg.Wait()

	req.NoError(errors[0])
	req.NoError(errors[1])
	req.Equal(results[0].ID, results[1].ID)

	var threadCount int64
	req.NoError(db.Model(&ThreadRow{}).Count(&threadCount).Error)
	req.EqualValues(1, threadCount)

	var participantCount int64
	req.NoError(db.Model(&ParticipantRow{}).Count(&participantCount).Error)
	req.EqualValues(2, participantCount)
}

func Test_ThreadRepository_Membership(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewThreadRepository(openTestDB(t), testLogger())

	thread, err := repo.Resolve(ctx, "alice", "bob")
	req.NoError(err)

	isMember, err := repo.IsParticipant(ctx, thread.ID, "alice")
	req.NoError(err)
	req.True(isMember)

	isMember, err = repo.IsParticipant(ctx, thread.ID, "mallory")
	req.NoError(err)
	req.False(isMember)

	other, err := repo.OtherParticipant(ctx, thread.ID, "alice")
	req.NoError(err)
	req.Equal("bob", other)
}

func Test_ThreadRepository_Get_Unknown_Thread(t *testing.T) {
	req := require.New(t)
	repo := NewThreadRepository(openTestDB(t), testLogger())

	_, err := repo.Get(context.Background(), uuid.New())
	req.ErrorIs(err, errs.ErrNotFound)
}

func Test_ThreadRepository_ThreadsFor_Orders_By_Activity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)
	hub := newTestHub(t)
	threads := NewThreadRepository(db, testLogger())
	dms := NewDMRepository(db, hub, testLogger())

	withBob, err := threads.Resolve(ctx, "alice", "bob")
	req.NoError(err)
	withCarol, err := threads.Resolve(ctx, "alice", "carol")
	req.NoError(err)

	// A new message in the older thread moves it to the top.
	_, err = dms.Insert(ctx, withBob.ID, "bob", "you up for a match?")
	req.NoError(err)

	list, err := threads.ThreadsFor(ctx, "alice")
	req.NoError(err)
	req.Len(list, 2)
	req.Equal(withBob.ID, list[0].ID)
	req.Equal(withCarol.ID, list[1].ID)

	// Bob participates in one thread only; mallory in none.
	list, err = threads.ThreadsFor(ctx, "bob")
	req.NoError(err)
	req.Len(list, 1)

	list, err = threads.ThreadsFor(ctx, "mallory")
	req.NoError(err)
	req.Empty(list)
}
