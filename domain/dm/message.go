package dm

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength mirrors the lounge cap. DMs have no delete path, so a
// message is immutable once written.
const MaxContentLength = 500

type Message struct {
	ID        uuid.UUID
	ThreadID  uuid.UUID
	SenderID  string
	Content   string
	CreatedAt time.Time
}
