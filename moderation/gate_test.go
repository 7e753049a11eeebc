package moderation

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "gamelounge/errors"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	classifier, err := NewClassifier([]string{"badger"})
	require.NoError(t, err)
	return NewGate(classifier, slog.Default())
}

func Test_Gate_Admits_Clean_Message(t *testing.T) {
	req := require.New(t)
	gate := newTestGate(t)
	window := NewWindow()

	req.NoError(gate.Admit("alice", window, "gg well played", time.Now()))
	req.Equal(1, window.CountSince(time.Now()))
}

func Test_Gate_Rejects_Banned_Term(t *testing.T) {
	req := require.New(t)
	gate := newTestGate(t)
	window := NewWindow()
	now := time.Now()

	err := gate.Admit("alice", window, "you absolute badger", now)
	req.ErrorIs(err, errs.ErrContentRejected)

	// A content rejection must not consume a rate slot.
	req.Equal(0, window.CountSince(now))
}

func Test_Gate_Rejects_Over_Rate_Limit(t *testing.T) {
	req := require.New(t)
	gate := newTestGate(t)
	window := NewWindow()
	now := time.Now()

	for i := 0; i < SpamLimit; i++ {
		req.NoError(gate.Admit("alice", window, "gg", now.Add(time.Duration(i)*time.Second)))
	}

	err := gate.Admit("alice", window, "gg", now.Add(5*time.Second))
	req.ErrorIs(err, errs.ErrRateLimited)

	// Rejections do not extend the window: once it elapses the caller
	// recovers even after hammering the limit.
	req.NoError(gate.Admit("alice", window, "gg", now.Add(SpamWindow+5*time.Second)))
}

func Test_Gate_Rate_Check_Runs_Before_Content_Check(t *testing.T) {
	req := require.New(t)
	gate := newTestGate(t)
	window := NewWindow()
	now := time.Now()

	for i := 0; i < SpamLimit; i++ {
		window.Record(now)
	}

	err := gate.Admit("alice", window, "badger", now)
	req.ErrorIs(err, errs.ErrRateLimited)
}
