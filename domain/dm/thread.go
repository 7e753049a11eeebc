// Package dm models private two-party conversations. A thread is the
// container, participants the membership edges, messages the content.
// For any unordered pair of users at most one thread ever exists.
package dm

import (
	"time"

	"github.com/google/uuid"
)

// Thread is a two-party conversation container. PairKey is the canonical
// identity of the participant pair and carries the uniqueness guarantee.
type Thread struct {
	ID            uuid.UUID
	PairKey       string
	CreatedAt     time.Time
	LastMessageAt time.Time
}

// Participant links one user to one thread. Exactly two rows exist per
// thread; a user appears at most once per thread.
type Participant struct {
	ThreadID uuid.UUID
	UserID   string
}

// CanonicalPairKey maps an unordered user pair to a stable key so that
// {A,B} and {B,A} resolve to the same thread. The store enforces a unique
// constraint on it.
func CanonicalPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
