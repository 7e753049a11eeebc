package moderation

import "time"

const (
	// SpamLimit is the number of sends allowed inside one window.
	SpamLimit = 5
	// SpamWindow is the span of the sliding rate window.
	SpamWindow = 10 * time.Second
)

// Window is the per-session record of recent admitted sends: a fixed
// capacity ring, owned by one caller's session, never shared across
// sessions. Capacity SpamLimit is sufficient because only admitted sends
// are recorded and admission requires fewer than SpamLimit live stamps.
type Window struct {
	stamps [SpamLimit]time.Time
	next   int
	filled int
}

func NewWindow() *Window {
	return &Window{}
}

// CountSince counts recorded sends within [now-SpamWindow, now].
func (w *Window) CountSince(now time.Time) int {
	cutoff := now.Add(-SpamWindow)
	count := 0
	for i := 0; i < w.filled; i++ {
		ts := w.stamps[i]
		if !ts.Before(cutoff) && !ts.After(now) {
			count++
		}
	}
	return count
}

// Allow reports whether a send at now would stay under the limit.
func (w *Window) Allow(now time.Time) bool {
	return w.CountSince(now) < SpamLimit
}

// Record extends the window with an admitted send. Rejected attempts must
// not be recorded: they do not consume a slot.
func (w *Window) Record(now time.Time) {
	w.stamps[w.next] = now
	w.next = (w.next + 1) % SpamLimit
	if w.filled < SpamLimit {
		w.filled++
	}
}
