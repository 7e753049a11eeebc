// Package chat contains the core concepts of the Global Lounge, the single
// shared broadcast room of the portal. Messages are soft-deleted, never
// removed, so the conversation keeps its continuity and audit trail.
package chat

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxContentLength is the hard cap on a lounge message body.
	MaxContentLength = 500
	// HistoryLimit is the size of the initial window loaded on join.
	HistoryLimit = 100
)

// Message is one lounge entry. While Pending is true the entry is an
// optimistic echo: ID is a locally generated temporary id and CreatedAt the
// local clock. Reconciliation swaps both for the authoritative values.
type Message struct {
	ID        uuid.UUID
	AuthorID  string
	Content   string
	IsFlagged bool
	IsDeleted bool
	DeletedBy string
	CreatedAt time.Time
	Pending   bool
}

// Before reports the display order: CreatedAt ascending, ties broken by id
// so every viewer renders an identical sequence.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID.String() < other.ID.String()
}
