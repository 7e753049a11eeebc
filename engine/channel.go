// Package engine contains the send/receive pipelines: the Channel Chat
// Engine for the Global Lounge and the DM Delivery Engine for private
// threads. Both treat the store as the single source of truth and never
// trust their own optimistic copies as final.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gamelounge/domain/chat"
	"gamelounge/domain/event"
	errs "gamelounge/errors"
	"gamelounge/feed"
	"gamelounge/identity"
	"gamelounge/moderation"
	"gamelounge/projection"
	"gamelounge/store"
)

// ChannelEngine drives the Global Lounge. A send moves through
// composing -> sending -> delivered|rejected: the moderation gate decides,
// an optimistic echo renders immediately, the store write follows, and the
// echo is reconciled in place against the authoritative row so the feed's
// own echo of the same insert never shows a duplicate.
//
// The timeline is an owned resource: mu serializes every append, replace
// and feed application, so a send reconciliation can never interleave with
// an inbound event and lose an update.
type ChannelEngine struct {
	mu       sync.Mutex
	log      *slog.Logger
	gate     *moderation.Gate
	messages store.IMessageRepository
	hub      *feed.Hub
	timeline *projection.Timeline
	// windows holds one rate window per caller session. Windows are local
	// to this engine instance; nothing is synchronized across sessions.
	windows map[string]*moderation.Window
	now     func() time.Time
}

func NewChannelEngine(gate *moderation.Gate, messages store.IMessageRepository, hub *feed.Hub, log *slog.Logger) *ChannelEngine {
	return &ChannelEngine{
		log:      log,
		gate:     gate,
		messages: messages,
		hub:      hub,
		timeline: projection.NewTimeline(),
		windows:  make(map[string]*moderation.Window),
		now:      time.Now,
	}
}

// Load fetches the initial window: the most recent non-deleted messages in
// ascending order. New messages append to the tail afterwards; nothing
// loaded is ever evicted.
func (e *ChannelEngine) Load(ctx context.Context) error {
	rows, err := e.messages.Recent(ctx, chat.HistoryLimit)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeline.Load(rows)
	return nil
}

// Send runs the full pipeline and returns the authoritative message id.
// RateLimited and ContentRejected fail synchronously before any write; a
// store failure rolls the optimistic echo back and surfaces WriteFailed.
func (e *ChannelEngine) Send(ctx context.Context, callerID, content string) (uuid.UUID, error) {
	if callerID == "" {
		return uuid.Nil, fmt.Errorf("%w: missing caller identity", errs.ErrNotAuthorized)
	}
	if len([]rune(content)) > chat.MaxContentLength {
		return uuid.Nil, fmt.Errorf("%w: content exceeds %d characters", errs.ErrContentRejected, chat.MaxContentLength)
	}

	now := e.now().UTC()

	e.mu.Lock()
	window, ok := e.windows[callerID]
	if !ok {
		window = moderation.NewWindow()
		e.windows[callerID] = window
	}
	if err := e.gate.Admit(callerID, window, content, now); err != nil {
		e.mu.Unlock()
		return uuid.Nil, err
	}

	echo := chat.Message{
		ID:        uuid.New(),
		AuthorID:  callerID,
		Content:   content,
		CreatedAt: now,
	}
	e.timeline.AppendPending(echo)
	e.mu.Unlock()

	row, err := e.messages.Insert(ctx, chat.PostMessageCommand{
		AuthorID: callerID,
		Content:  content,
		At:       now,
	})
	if err != nil {
		e.mu.Lock()
		e.timeline.Drop(echo.ID)
		e.mu.Unlock()
		return uuid.Nil, err
	}

	e.mu.Lock()
	e.timeline.Reconcile(echo.ID, row)
	e.mu.Unlock()
	return row.ID, nil
}

// Delete soft-deletes a message. Allowed for the author and for moderator
// callers. There is no optimistic path: the flag flips only after the
// confirmed write, and the timeline updates through the feed echo.
func (e *ChannelEngine) Delete(ctx context.Context, id uuid.UUID, caller identity.Caller) error {
	if caller.UserID == "" {
		return fmt.Errorf("%w: missing caller identity", errs.ErrNotAuthorized)
	}
	row, err := e.messages.Get(ctx, id)
	if err != nil {
		return err
	}
	if row.AuthorID != caller.UserID && !caller.IsModerator() {
		return fmt.Errorf("%w: not the author", errs.ErrNotAuthorized)
	}
	if _, err := e.messages.SoftDelete(ctx, id, caller.UserID); err != nil {
		return err
	}
	return nil
}

// Subscribe opens a live stream of lounge events. The caller must Close
// the subscription when leaving the channel or it keeps receiving events.
func (e *ChannelEngine) Subscribe() *feed.Subscription {
	return e.hub.Subscribe(event.TableChatMessages, "")
}

// Messages returns the current visible list in display order.
func (e *ChannelEngine) Messages() []chat.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeline.Snapshot()
}

// Run consumes the engine's own feed subscription and folds events into
// the timeline one at a time, in delivery order. It is the serialization
// point between inbound echoes and local sends.
func (e *ChannelEngine) Run(ctx context.Context) error {
	sub := e.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			e.log.Debug("Stopping channel engine")
			return nil
		case evt, ok := <-sub.C:
			if !ok {
				return nil
			}
			e.apply(evt)
		}
	}
}

func (e *ChannelEngine) apply(evt event.RowEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch typed := evt.(type) {
	case event.ChatMessageInserted:
		e.timeline.ApplyInsert(typed.Row)
	case event.ChatMessageUpdated:
		e.timeline.ApplyUpdate(typed.Row)
	}
}
