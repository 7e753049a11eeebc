package chat

import (
	"time"

	"github.com/google/uuid"
)

type PostMessageCommand struct {
	AuthorID string
	Content  string
	At       time.Time
}

type DeleteMessageCommand struct {
	MessageID uuid.UUID
	CallerID  string
	// Moderator callers may delete messages they did not author.
	Moderator bool
}
