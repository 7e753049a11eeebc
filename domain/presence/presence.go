// Package presence derives user liveness from heartbeats. No online flag is
// ever stored: a user is online iff a heartbeat landed inside OnlineWindow,
// and staleness alone demotes them to offline.
package presence

import (
	"fmt"
	"time"

	"gamelounge/errors"
)

const (
	// OnlineWindow is the span after which a missing heartbeat demotes a
	// user to offline.
	OnlineWindow = 5 * time.Minute
	// HeartbeatInterval is the cadence of a live session's beats.
	HeartbeatInterval = 15 * time.Second
	// PollInterval is the cadence of the online-count recomputation.
	PollInterval = 30 * time.Second
)

// StatusType is a user-set label. It is independent of the liveness
// derivation; the two are combined only for display.
type StatusType string

const (
	StatusOnline  StatusType = "online"
	StatusIdle    StatusType = "idle"
	StatusDnd     StatusType = "dnd"
	StatusGaming  StatusType = "gaming"
	StatusOffline StatusType = "offline"
)

func ParseStatusType(s string) (StatusType, error) {
	switch StatusType(s) {
	case StatusOnline, StatusIdle, StatusDnd, StatusGaming, StatusOffline:
		return StatusType(s), nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrInvalidStatus, s)
}

// Record is the presence projection of a user profile.
type Record struct {
	UserID         string     `json:"user_id"`
	LastPresenceAt time.Time  `json:"last_presence_at"`
	Status         StatusType `json:"status_type"`
	StatusMessage  string     `json:"status_message"`
}

// OnlineAt reports liveness at the given instant.
func (r Record) OnlineAt(now time.Time) bool {
	return now.Sub(r.LastPresenceAt) < OnlineWindow
}

// DisplayStatus combines the user-set label with liveness: a stale record
// always reads offline, whatever the label says.
func (r Record) DisplayStatus(now time.Time) StatusType {
	if !r.OnlineAt(now) {
		return StatusOffline
	}
	if r.Status == "" || r.Status == StatusOffline {
		return StatusOnline
	}
	return r.Status
}
